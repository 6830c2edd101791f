package val

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ValidateSchema validates schema and returns a VALIDATION_FAILED errx error whose
// fields map each failing field to a readable description.
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(errx.M)
		for _, fieldErr := range validationErrors {
			fields[fieldPath(fieldErr)] = describe(fieldErr)
		}

		return errx.New(
			"Validation failed. See fields for details.",
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithFields(fields),
		)
	}

	return errx.New(
		fmt.Sprintf("Unknown validation error: %s", err.Error()),
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
	)
}

// Summary renders the field errors of a validation error as
// "field: description; field: description", sorted by field. Other errors
// are returned as their message.
func Summary(err error) string {
	e := errx.AsErrorX(err)
	if e.Code() != CodeValidationFailed || len(e.Fields()) == 0 {
		return err.Error()
	}

	keys := lo.Keys(e.Fields())
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string {
		return k + ": " + e.Fields()[k]
	})
	return strings.Join(parts, "; ")
}

// fieldPath drops the top-level struct name from the namespace ("SpellCreate.level" -> "level").
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", param)
		}
		return fmt.Sprintf("Must be at most %s", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	case "gtfield":
		return fmt.Sprintf("Must be greater than %s", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	case "url":
		return "Must be a valid URL"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	}

	return fmt.Sprintf("Failed validation: %s", fe.Tag())
}
