// Package val validates request payloads and bulk rows against `validate` struct tags.
package val

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(getTagName)
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic("[val]: " + err.Error())
	}
	return v
}

func getValidator() *validator.Validate {
	return validate
}

// getTagName names a field after its json, query or params tag, falling back to the Go name.
func getTagName(fld reflect.StructField) string {
	for _, tagName := range []string{"json", "query", "params"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tagName), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
