package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors is the flattened set of failures for a request payload.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, failure := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(failure.Field)
		b.WriteString(" failed on ")
		b.WriteString(failure.Tag)
		if failure.Param != "" {
			b.WriteString("=")
			b.WriteString(failure.Param)
		}
	}
	return b.String()
}

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json name so API errors match the wire format.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == "" || tag == "-" {
			return field.Name
		}
		return tag
	})
	return v
})

// ValidateStruct runs tag-based validation and flattens the failures.
func ValidateStruct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	failures := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}
