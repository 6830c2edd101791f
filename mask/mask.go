// Package mask flattens structs into ordered maps for logging, hiding fields tagged `mask:"true"`.
package mask

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const tagName = "mask"

// OrdMap is the flattened, field-ordered view produced by StructToOrdMap.
type OrdMap = orderedmap.OrderedMap[string, any]

// StructToOrdMap flattens v into dotted keys in declaration order. Key names
// come from the json tag, then the yaml tag, then the Go field name; "-" skips
// the field. Non-zero values of masked fields are replaced by a kind marker.
func StructToOrdMap(v any) *OrdMap {
	if v == nil {
		return nil
	}
	om := orderedmap.New[string, any]()
	flatten(om, reflect.ValueOf(v), "")
	return om
}

func flatten(om *OrdMap, val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		om.Set(prefix, val.Interface())
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}

		name, skip := fieldName(sf)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		fv := val.Field(i)
		switch {
		case strings.EqualFold(sf.Tag.Get(tagName), "true"):
			om.Set(name, hide(fv))
		case isStructLike(fv):
			flatten(om, fv, name)
		default:
			om.Set(name, fv.Interface())
		}
	}
}

func isStructLike(v reflect.Value) bool {
	if v.Kind() == reflect.Pointer {
		return !v.IsNil() && v.Elem().Kind() == reflect.Struct
	}
	return v.Kind() == reflect.Struct
}

func hide(v reflect.Value) any {
	switch v.Kind() { //nolint:exhaustive // remaining kinds are never nil
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return nil
		}
	}

	if v.IsZero() {
		return v.Interface()
	}

	kind := v.Kind().String()
	switch {
	case v.CanInt():
		kind = "int"
	case v.CanUint():
		kind = "uint"
	case v.CanFloat():
		kind = "float"
	case v.Kind() == reflect.Array:
		kind = "slice"
	}
	return fmt.Sprintf("***masked-%s***", kind)
}

func fieldName(sf reflect.StructField) (string, bool) {
	for _, tag := range []string{"json", "yaml"} {
		raw, ok := sf.Tag.Lookup(tag)
		if !ok {
			continue
		}
		if raw == "-" {
			return "", true
		}
		if name, _, _ := strings.Cut(raw, ","); name != "" {
			return name, false
		}
	}
	return sf.Name, false
}
