package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/unischedule/dashboard/internal/core/domain"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "{0} is required"

	isoDateTag  = "isodate"
	isoDateText = "{0} must be a valid date"

	dateOrderTag  = "dateorder"
	dateOrderText = "end date cannot be before start date"
)

// Validator checks drafts before they are sent to the backend and reports
// every violation at once.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	validate.RegisterStructValidation(eventStructValidation, domain.Event{})

	registerCustomTranslation(validate, translator, notBlankTag, notBlankText)
	registerCustomTranslation(validate, translator, isoDateTag, isoDateText)
	registerCustomTranslation(validate, translator, dateOrderTag, dateOrderText)

	return &Validator{validate: validate, translator: translator}
}

// Struct returns nil or a *ValidationError listing every failed field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Translate(v.translator)})
	}
	return &ValidationError{Fields: fields}
}

func registerCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := domain.ParseDate(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// eventStructValidation rejects events that end before they start.
// Unparseable dates are left to the isodate tag.
func eventStructValidation(sl validator.StructLevel) {
	evt, ok := sl.Current().Interface().(domain.Event)
	if !ok {
		return
	}
	start, err := domain.ParseDate(strings.TrimSpace(evt.StartDate))
	if err != nil {
		return
	}
	end, err := domain.ParseDate(strings.TrimSpace(evt.EndDate))
	if err != nil {
		return
	}
	if end.Before(start) {
		sl.ReportError(evt.EndDate, "endDate", "EndDate", dateOrderTag, "")
	}
}
