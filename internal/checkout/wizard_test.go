package checkout

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
)

func testConfig() Config {
	return Config{ProductID: "p1", ProductName: "Phone 15", Price: 199, SelectedLeaseTerm: 12}
}

func testDocuments() VerificationDocuments {
	return VerificationDocuments{
		NationalID:        StoredFile{Bucket: "verification-documents", Path: "s1/national-id", Filename: "id.pdf"},
		SalaryCertificate: StoredFile{Bucket: "verification-documents", Path: "s1/salary-certificate", Filename: "salary.pdf"},
	}
}

// advance drives a fresh wizard to the given step.
func advance(t *testing.T, w *Wizard, to Step) {
	t.Helper()
	if to >= StepProtection {
		require.NoError(t, w.SubmitCustomerInfo(validInfo()))
	}
	if to >= StepDocuments {
		require.NoError(t, w.SelectProtection(true))
	}
	if to >= StepReview {
		require.NoError(t, w.SubmitDocuments(testDocuments()))
	}
	require.Equal(t, to, w.Step())
}

func TestWizardForwardFlow(t *testing.T) {
	var observed []Step
	w := NewWizard(testConfig(), WithStepObserver(func(s Step) { observed = append(observed, s) }))
	require.Equal(t, StepCustomerInfo, w.Step())

	advance(t, w, StepReview)
	assert.Equal(t, []Step{StepProtection, StepDocuments, StepReview}, observed)

	review, err := w.Review()
	require.NoError(t, err)
	assert.Equal(t, validInfo(), review.Customer)
	assert.True(t, review.Protection.AddProtection)
	assert.Equal(t, 20.0, review.Protection.ProtectionPrice)
	assert.Equal(t, 219.0, review.TotalPrice())
	assert.Equal(t, testDocuments(), review.Documents)
}

func TestWizardBackDecrementsStep(t *testing.T) {
	for _, from := range []Step{StepProtection, StepDocuments, StepReview} {
		exits := 0
		w := NewWizard(testConfig(), WithNavigator(NavigatorFunc(func() { exits++ })))
		advance(t, w, from)

		exited := w.GoBack()
		assert.False(t, exited)
		assert.Equal(t, from-1, w.Step())
		assert.Zero(t, exits)
	}
}

func TestWizardBackAtFirstStepDelegatesToNavigator(t *testing.T) {
	exits, changes := 0, 0
	w := NewWizard(testConfig(),
		WithNavigator(NavigatorFunc(func() { exits++ })),
		WithStepObserver(func(Step) { changes++ }),
	)

	assert.True(t, w.GoBack())
	assert.Equal(t, StepCustomerInfo, w.Step())
	assert.Equal(t, 1, exits)
	assert.Zero(t, changes)
}

func TestWizardRejectsOutOfOrderTransitions(t *testing.T) {
	w := NewWizard(testConfig())

	err := w.SelectProtection(true)
	require.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	require.ErrorIs(t, w.SubmitDocuments(testDocuments()), ErrWrongStep)
	_, err = w.Review()
	require.ErrorIs(t, err, ErrWrongStep)

	advance(t, w, StepProtection)
	require.ErrorIs(t, w.SubmitCustomerInfo(validInfo()), ErrWrongStep)
	assert.Equal(t, StepProtection, w.Step())
}

func TestWizardRequiresBothDocuments(t *testing.T) {
	w := NewWizard(testConfig())
	advance(t, w, StepDocuments)

	docs := testDocuments()
	docs.SalaryCertificate = StoredFile{}
	err := w.SubmitDocuments(docs)
	require.True(t, errors.Is(err, ErrMissingDocument))
	assert.Equal(t, StepDocuments, w.Step())
}

func TestWizardBackKeepsDraftsForPrefill(t *testing.T) {
	w := NewWizard(testConfig())
	advance(t, w, StepReview)

	w.GoBack()
	w.GoBack()
	w.GoBack()
	require.Equal(t, StepCustomerInfo, w.Step())

	v := ViewOf(w.State())
	require.NotNil(t, v.CustomerInfo)
	assert.Equal(t, validInfo(), *v.CustomerInfo)
	require.NotNil(t, v.Protection)
	assert.True(t, v.Protection.AddProtection)
	require.NotNil(t, v.Documents)
	assert.Len(t, w.StoredFiles(), 2)

	_, err := w.Review()
	require.ErrorIs(t, err, ErrWrongStep, "drafts never satisfy a later step")
}

func TestViewOfTotalsProtection(t *testing.T) {
	w := NewWizard(testConfig())
	assert.Equal(t, 199.0, ViewOf(w.State()).TotalPrice)

	advance(t, w, StepDocuments)
	v := ViewOf(w.State())
	assert.Equal(t, StepDocuments, v.CurrentStep)
	assert.Equal(t, 219.0, v.TotalPrice)
	assert.Nil(t, v.Documents)
}
