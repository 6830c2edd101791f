package bulkload

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/code19m/errx"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/tabletop/val"
)

// auditColumns are never taken from an upload.
var auditColumns = []string{"created_at", "created_by", "updated_at", "updated_by"} //nolint:gochecknoglobals // constant list

// normalize drops absent markers (nil, blank strings, NaN) and audit columns.
func normalize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if !isAbsent(v) {
			out[k] = v
		}
	}
	for _, col := range auditColumns {
		delete(out, col)
	}
	return out
}

func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		return s == "" || strings.EqualFold(s, "nan")
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}

// decodeInto coerces values to the field types of target's json fields and
// unmarshals them into target. Coercion failures are reported per field.
func decodeInto(values map[string]any, target any) error {
	fields := make(errx.M)
	coerced := make(map[string]any, len(values))
	for k, v := range values {
		coerced[k] = v
	}

	types := jsonFieldTypes(reflect.TypeOf(target).Elem())
	for name, typ := range types {
		v, ok := coerced[name]
		if !ok {
			continue
		}
		c, err := coerce(v, typ)
		if err != nil {
			fields[name] = err.Error()
			continue
		}
		coerced[name] = c
	}

	if len(fields) > 0 {
		return errx.New(
			"Row could not be converted. See fields for details.",
			errx.WithCode(val.CodeValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithFields(fields),
		)
	}

	raw, err := json.Marshal(coerced)
	if err != nil {
		return errx.Wrap(err)
	}
	err = json.Unmarshal(raw, target)
	if err != nil {
		return errx.New(
			err.Error(),
			errx.WithCode(val.CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}
	return nil
}

func coerce(v any, typ reflect.Type) (any, error) {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	var (
		out any
		err error
	)

	switch typ.Kind() { //nolint:exhaustive // composite kinds are passed through to encoding/json
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out, err = toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("Must be an integer, got %q", cast.ToString(v)) //nolint:staticcheck // user facing
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n int64
		n, err = toInt64(v)
		if err == nil && n < 0 {
			err = errNotInteger
		}
		out = uint64(n) //nolint:gosec // checked above
		if err != nil {
			return nil, fmt.Errorf("Must be a non-negative integer, got %q", cast.ToString(v)) //nolint:staticcheck // user facing
		}
	case reflect.Float32, reflect.Float64:
		out, err = cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("Must be a number, got %q", cast.ToString(v)) //nolint:staticcheck // user facing
		}
	case reflect.Bool:
		out, err = cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("Must be a boolean, got %q", cast.ToString(v)) //nolint:staticcheck // user facing
		}
	case reflect.String:
		out, err = cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("Must be text, got %T", v) //nolint:staticcheck // user facing
		}
	default:
		if s, ok := v.(string); ok && (typ.Kind() == reflect.Map || typ.Kind() == reflect.Slice) {
			var decoded any
			if json.Unmarshal([]byte(s), &decoded) == nil {
				return decoded, nil
			}
		}
		out = v
	}

	return out, nil
}

var errNotInteger = errors.New("not an integer")

// toInt64 reads decimal integers only: leading zeros stay decimal, hex and
// octal prefixes are rejected, and numbers with a fractional part fail
// instead of being truncated. "12.0" is accepted as 12.
func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || strings.ContainsAny(s, "xXpP") {
			return 0, errNotInteger
		}
		return integral(f)
	case float64:
		return integral(x)
	case float32:
		return integral(float64(x))
	default:
		return cast.ToInt64E(v)
	}
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	return int64(f), nil
}

// jsonFieldTypes maps json names of t's exported fields, including promoted
// ones from embedded structs, to their types.
func jsonFieldTypes(t reflect.Type) map[string]reflect.Type {
	types := make(map[string]reflect.Type)
	for i := range t.NumField() {
		sf := t.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			for k, v := range jsonFieldTypes(sf.Type) {
				types[k] = v
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		types[name] = sf.Type
	}
	return types
}
