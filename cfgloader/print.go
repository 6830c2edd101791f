package cfgloader

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"gopkg.in/yaml.v3"
)

// Print writes config to w as yaml, with every `mask:"true"` field starred out.
// Masked strings keep their length; other masked scalars print as zero values.
func Print(w io.Writer, config any) error {
	out, err := yaml.Marshal(Masked(config))
	if err != nil {
		return errx.Wrap(err)
	}
	_, err = fmt.Fprintf(w, "Loaded config:\n%s", out)
	return errx.Wrap(err)
}

// Masked returns a copy of config safe to print.
func Masked(config any) any {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return mask(v, false).Interface()
}

func mask(v reflect.Value, secret bool) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() { //nolint:exhaustive // remaining kinds are copied or zeroed below
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		cp := reflect.New(v.Type().Elem())
		cp.Elem().Set(mask(v.Elem(), secret))
		return cp

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return mask(v.Elem(), secret)

	case reflect.Struct:
		cp := reflect.New(v.Type()).Elem()
		for i := range v.NumField() {
			dst := cp.Field(i)
			if !dst.CanSet() || !v.Field(i).CanInterface() {
				continue
			}
			dst.Set(mask(v.Field(i), secret || v.Type().Field(i).Tag.Get("mask") == "true"))
		}
		return cp

	case reflect.String:
		if secret {
			return reflect.ValueOf(strings.Repeat("*", v.Len())).Convert(v.Type())
		}
		return v

	case reflect.Slice, reflect.Array, reflect.Map:
		return v

	default:
		if secret {
			return reflect.Zero(v.Type())
		}
		return v
	}
}
