package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON name so messages match what the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// FieldError is a validation failure on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

// Struct validates s against its `validate` tags and returns field errors.
func Struct(s interface{}) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "body", Message: "ist ungültig"}}
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fe.Field(),
			Message: getValidationMessage(fe),
		})
	}
	return fieldErrors
}

// JoinFieldErrors renders field errors as one message.
func JoinFieldErrors(fieldErrors []FieldError) string {
	parts := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		parts[i] = fe.String()
	}
	return strings.Join(parts, ", ")
}

func getValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "ist erforderlich"
	case "min":
		return "muss mindestens " + err.Param() + " sein"
	case "max":
		return "darf höchstens " + err.Param() + " sein"
	case "oneof":
		return "muss einer der Werte " + err.Param() + " sein"
	default:
		return "ist ungültig"
	}
}
