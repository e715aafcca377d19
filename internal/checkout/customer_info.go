package checkout

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

type OrderType string

const (
	OrderIndividual OrderType = "individual"
	OrderBusiness   OrderType = "business"
)

// CustomerInfo is the buyer identity captured at the first checkout step.
type CustomerInfo struct {
	FullName     string    `json:"fullName" validate:"min=2"`
	Email        string    `json:"email" validate:"required,strict_email"`
	Phone        string    `json:"phone" validate:"required,ksa_phone"`
	OrderType    OrderType `json:"orderType" validate:"required,oneof=individual business"`
	BusinessName string    `json:"businessName,omitempty"`
}

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	intlPhonePattern  = regexp.MustCompile(`^\+9665\d{8}$`)
	localPhonePattern = regexp.MustCompile(`^05\d{8}$`)
)

// FieldErrorKind is the machine-readable reason a field failed.
type FieldErrorKind string

const (
	KindRequired      FieldErrorKind = "required"
	KindTooShort      FieldErrorKind = "too_short"
	KindInvalidFormat FieldErrorKind = "invalid_format"
	KindInvalidChoice FieldErrorKind = "invalid_choice"
)

type FieldError struct {
	Field   string         `json:"-"`
	Kind    FieldErrorKind `json:"kind"`
	Message string         `json:"message"`
}

// ValidationError lists every failing field in declaration order, with the
// cross-field businessName rule last.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field+"="+string(f.Kind))
	}
	return "customer info invalid: " + strings.Join(names, ", ")
}

// ByField indexes the errors by JSON field name.
func (e *ValidationError) ByField() map[string]FieldError {
	out := make(map[string]FieldError, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f
	}
	return out
}

var customerValidator = newCustomerValidator()

func newCustomerValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "strict_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "ksa_phone", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		return intlPhonePattern.MatchString(phone) || localPhonePattern.MatchString(phone)
	})
	v.RegisterStructValidation(businessNameRule, CustomerInfo{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// businessNameRule runs after the per-field rules.
func businessNameRule(sl validator.StructLevel) {
	info := sl.Current().Interface().(CustomerInfo)
	if info.OrderType != OrderBusiness {
		return
	}
	switch n := utf8.RuneCountInString(info.BusinessName); {
	case n == 0:
		sl.ReportError(info.BusinessName, "businessName", "BusinessName", "required", "")
	case n < 2:
		sl.ReportError(info.BusinessName, "businessName", "BusinessName", "min", "2")
	}
}

// ValidateCustomerInfo checks input and returns the accepted value. On
// failure the error is a *ValidationError with messages in the given locale.
func ValidateCustomerInfo(input CustomerInfo, locale Locale) (CustomerInfo, error) {
	err := customerValidator.Struct(input)
	if err == nil {
		if input.OrderType != OrderBusiness {
			input.BusinessName = ""
		}
		return input, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return CustomerInfo{}, errors.Wrap(err, "validate customer info")
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		kind := kindForTag(fe.Tag())
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Kind:    kind,
			Message: message(locale, fe.Field(), kind),
		})
	}
	return CustomerInfo{}, out
}

func kindForTag(tag string) FieldErrorKind {
	switch tag {
	case "required":
		return KindRequired
	case "min":
		return KindTooShort
	case "oneof":
		return KindInvalidChoice
	default:
		return KindInvalidFormat
	}
}
