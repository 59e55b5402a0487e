package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sahilchouksey/quiz-brain/model"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports json field names and knows
// the question_type tag
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch model.QuestionType(strings.ToUpper(fl.Field().String())) {
		case "", model.QuestionTypeShort, model.QuestionTypeMultipleChoice:
			return true
		}
		return false
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			errors["request"] = err.Error()
		}
		return errors
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "required_without":
			errors[field] = fmt.Sprintf("%s is required when %s is empty", field, strings.ToLower(e.Param()))
		case "excluded_with":
			errors[field] = fmt.Sprintf("%s cannot be combined with %s", field, strings.ToLower(e.Param()))
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "max":
			errors[field] = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "gte":
			errors[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
		case "lte":
			errors[field] = fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
		case "oneof":
			errors[field] = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
		case "question_type":
			errors[field] = fmt.Sprintf("%s must be SHORT or MULTIPLECHOICE", field)
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return errors
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
