package checkout

import (
	"github.com/go-faster/errors"

	"storefront/internal/apperr"
)

type Step int

const (
	StepCustomerInfo Step = 1
	StepProtection   Step = 2
	StepDocuments    Step = 3
	StepReview       Step = 4
)

var (
	ErrWrongStep       = errors.New("transition not allowed from the current step")
	ErrMissingDocument = errors.New("both documents are required")
)

// State is one of CustomerInfoState, ProtectionState, DocumentsState or
// ReviewState. Each forward transition is a method on the previous state, so
// a ReviewState can only be built with every earlier step's data.
type State interface {
	Step() Step
	Config() Config
	isState()
}

// drafts keeps earlier answers around after stepping back so they can be
// shown again; they never satisfy a later step by themselves.
type drafts struct {
	customer   *CustomerInfo
	protection *ProtectionSelection
	documents  *VerificationDocuments
}

type CustomerInfoState struct {
	Checkout Config
	drafts   drafts
}

type ProtectionState struct {
	Checkout Config
	Customer CustomerInfo
	drafts   drafts
}

type DocumentsState struct {
	Checkout   Config
	Customer   CustomerInfo
	Protection ProtectionSelection
	drafts     drafts
}

type ReviewState struct {
	Checkout   Config
	Customer   CustomerInfo
	Protection ProtectionSelection
	Documents  VerificationDocuments
	drafts     drafts
}

func (CustomerInfoState) Step() Step { return StepCustomerInfo }
func (ProtectionState) Step() Step   { return StepProtection }
func (DocumentsState) Step() Step    { return StepDocuments }
func (ReviewState) Step() Step       { return StepReview }

func (s CustomerInfoState) Config() Config { return s.Checkout }
func (s ProtectionState) Config() Config   { return s.Checkout }
func (s DocumentsState) Config() Config    { return s.Checkout }
func (s ReviewState) Config() Config       { return s.Checkout }

func (CustomerInfoState) isState() {}
func (ProtectionState) isState()   {}
func (DocumentsState) isState()    {}
func (ReviewState) isState()       {}

func (s CustomerInfoState) Next(info CustomerInfo) ProtectionState {
	return ProtectionState{Checkout: s.Checkout, Customer: info, drafts: s.drafts}
}

func (s ProtectionState) Next(p ProtectionSelection) DocumentsState {
	return DocumentsState{Checkout: s.Checkout, Customer: s.Customer, Protection: p, drafts: s.drafts}
}

func (s DocumentsState) Next(docs VerificationDocuments) ReviewState {
	return ReviewState{
		Checkout:   s.Checkout,
		Customer:   s.Customer,
		Protection: s.Protection,
		Documents:  docs,
		drafts:     s.drafts,
	}
}

func (s ProtectionState) Back() CustomerInfoState {
	d := s.drafts
	d.customer = &s.Customer
	return CustomerInfoState{Checkout: s.Checkout, drafts: d}
}

func (s DocumentsState) Back() ProtectionState {
	d := s.drafts
	d.protection = &s.Protection
	return ProtectionState{Checkout: s.Checkout, Customer: s.Customer, drafts: d}
}

func (s ReviewState) Back() DocumentsState {
	d := s.drafts
	d.documents = &s.Documents
	return DocumentsState{Checkout: s.Checkout, Customer: s.Customer, Protection: s.Protection, drafts: d}
}

// TotalPrice is the monthly price including protection when selected.
func (s ReviewState) TotalPrice() float64 {
	return s.Protection.TotalPrice(s.Checkout.Price)
}

// Navigator leaves checkout entirely.
type Navigator interface {
	Exit()
}

type NavigatorFunc func()

func (f NavigatorFunc) Exit() { f() }

type WizardOption func(*Wizard)

// WithStepObserver registers fn to run after every step change. The UI uses
// it to reset the scroll position.
func WithStepObserver(fn func(Step)) WizardOption {
	return func(w *Wizard) { w.onStepChange = fn }
}

func WithNavigator(nav Navigator) WizardOption {
	return func(w *Wizard) { w.nav = nav }
}

// Wizard drives the four-step checkout. It is not safe for concurrent use;
// the session store serializes access.
type Wizard struct {
	state        State
	onStepChange func(Step)
	nav          Navigator
}

func NewWizard(cfg Config, opts ...WizardOption) *Wizard {
	w := &Wizard{state: CustomerInfoState{Checkout: cfg}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) Step() Step { return w.state.Step() }

func (w *Wizard) transition(next State) {
	w.state = next
	if w.onStepChange != nil {
		w.onStepChange(next.Step())
	}
}

func wrongStep(want, got Step) error {
	return apperr.Wrap(errors.Wrapf(ErrWrongStep, "want step %d, at step %d", want, got),
		apperr.KindConflict, "checkout is not at the expected step")
}

// SubmitCustomerInfo stores already validated info and moves 1→2.
func (w *Wizard) SubmitCustomerInfo(info CustomerInfo) error {
	s, ok := w.state.(CustomerInfoState)
	if !ok {
		return wrongStep(StepCustomerInfo, w.Step())
	}
	w.transition(s.Next(info))
	return nil
}

// SelectProtection stores the choice and moves 2→3.
func (w *Wizard) SelectProtection(include bool) error {
	s, ok := w.state.(ProtectionState)
	if !ok {
		return wrongStep(StepProtection, w.Step())
	}
	w.transition(s.Next(NewProtectionSelection(s.Checkout.Price, include)))
	return nil
}

// SubmitDocuments stores both file handles and moves 3→4.
func (w *Wizard) SubmitDocuments(docs VerificationDocuments) error {
	s, ok := w.state.(DocumentsState)
	if !ok {
		return wrongStep(StepDocuments, w.Step())
	}
	if !docs.complete() {
		return apperr.Wrap(ErrMissingDocument, apperr.KindBadRequest, "national ID and salary certificate are required")
	}
	w.transition(s.Next(docs))
	return nil
}

// GoBack moves one step back. At step 1 it hands control to the navigator
// and reports true; the step does not change.
func (w *Wizard) GoBack() (exited bool) {
	switch s := w.state.(type) {
	case ProtectionState:
		w.transition(s.Back())
	case DocumentsState:
		w.transition(s.Back())
	case ReviewState:
		w.transition(s.Back())
	default:
		if w.nav != nil {
			w.nav.Exit()
		}
		return true
	}
	return false
}

// Review returns the completed checkout; it fails unless the wizard is at step 4.
func (w *Wizard) Review() (ReviewState, error) {
	s, ok := w.state.(ReviewState)
	if !ok {
		return ReviewState{}, wrongStep(StepReview, w.Step())
	}
	return s, nil
}

// StoredFiles lists every uploaded file the wizard references, including
// ones only kept as drafts.
func (w *Wizard) StoredFiles() []StoredFile {
	var out []StoredFile
	var d drafts
	switch s := w.state.(type) {
	case CustomerInfoState:
		d = s.drafts
	case ProtectionState:
		d = s.drafts
	case DocumentsState:
		d = s.drafts
	case ReviewState:
		d = s.drafts
		out = append(out, s.Documents.files()...)
	}
	if d.documents != nil {
		for _, f := range d.documents.files() {
			if !containsFile(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

func containsFile(files []StoredFile, f StoredFile) bool {
	for _, existing := range files {
		if existing.Bucket == f.Bucket && existing.Path == f.Path {
			return true
		}
	}
	return false
}
