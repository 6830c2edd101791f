package repogen

import (
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ListSeparator splits a text filter into alternatives.
const ListSeparator = ","

type valueKind uint8

const (
	kindAbsent valueKind = iota
	kindText
	kindScalar
	kindList
)

// FilterValue is the value side of one FilterMap entry. Which constructor built
// it decides how it is matched: Text is fuzzy unless exact matching is asked
// for, Scalar is always compared for equality and List is a fuzzy OR.
type FilterValue struct {
	kind   valueKind
	text   string
	scalar any
	list   []string
}

// Absent leaves the field unconstrained.
func Absent() FilterValue {
	return FilterValue{}
}

// Text builds a value from user text. Text containing ListSeparator becomes a List.
func Text(s string) FilterValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent()
	}
	if strings.Contains(s, ListSeparator) {
		return List(strings.Split(s, ListSeparator)...)
	}
	return FilterValue{kind: kindText, text: s}
}

// Scalar builds a value that is only ever matched by equality: numbers, enums, ids, booleans.
func Scalar(v any) FilterValue {
	if v == nil {
		return Absent()
	}
	return FilterValue{kind: kindScalar, scalar: v}
}

// List builds a set of fuzzy alternatives. Blank alternatives are dropped.
func List(alternatives ...string) FilterValue {
	alts := lo.FilterMap(alternatives, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if len(alts) == 0 {
		return Absent()
	}
	return FilterValue{kind: kindList, list: alts}
}

// IsAbsent reports whether the value constrains nothing.
func (v FilterValue) IsAbsent() bool {
	return v.kind == kindAbsent
}

// Value returns the plain value for echoing back to clients.
func (v FilterValue) Value() any {
	switch v.kind {
	case kindText:
		return v.text
	case kindScalar:
		return v.scalar
	case kindList:
		return v.list
	default:
		return nil
	}
}

// FilterMap maps field names, optionally qualified as "table.field", to filter values.
type FilterMap map[string]FilterValue

// Echo returns the non-absent filters as plain values.
func (m FilterMap) Echo() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if !v.IsAbsent() {
			out[k] = v.Value()
		}
	}
	return out
}

// Op is a predicate comparison.
type Op uint8

const (
	// OpEq is literal equality.
	OpEq Op = iota + 1
	// OpContains is a case-insensitive substring match.
	OpContains
)

// Predicate is one comparison against a column. Predicates built for the same
// field are OR'd together; groups for different fields are AND'd.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// BuildPredicates turns one FilterMap entry into predicates against field.
// Only the last segment of a dotted field name is used as the column.
func BuildPredicates(field string, v FilterValue, exact bool) []Predicate {
	column := columnOf(field)

	switch v.kind {
	case kindList:
		return lo.Map(v.list, func(alt string, _ int) Predicate {
			return Predicate{Column: column, Op: OpContains, Value: alt}
		})
	case kindScalar:
		return []Predicate{{Column: column, Op: OpEq, Value: v.scalar}}
	case kindText:
		if exact {
			return []Predicate{{Column: column, Op: OpEq, Value: v.text}}
		}
		return []Predicate{{Column: column, Op: OpContains, Value: v.text}}
	default:
		return nil
	}
}

// applyFilters ANDs one OR-group per filtered field onto q. Every key must
// name a column of table, even when its value is absent.
func applyFilters(
	q *bun.SelectQuery,
	table *schema.Table,
	entity string,
	filters FilterMap,
	exact bool,
) (*bun.SelectQuery, error) {
	keys := lo.Keys(filters)
	slices.Sort(keys)

	for _, key := range keys {
		if !table.HasField(columnOf(key)) {
			return nil, UnknownFilterError(key, entity)
		}

		preds := BuildPredicates(key, filters[key], exact)
		if len(preds) == 0 {
			continue
		}

		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, p := range preds {
				q = appendPredicate(q, p)
			}
			return q
		})
	}

	return q, nil
}

func appendPredicate(q *bun.SelectQuery, p Predicate) *bun.SelectQuery {
	if p.Op == OpContains {
		pattern := "%" + strings.ToLower(toText(p.Value)) + "%"
		return q.WhereOr("LOWER(CAST(?TableAlias.? AS TEXT)) LIKE ?", bun.Ident(p.Column), pattern)
	}
	return q.WhereOr("?TableAlias.? = ?", bun.Ident(p.Column), p.Value)
}

func toText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func columnOf(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

var uuidType = reflect.TypeFor[uuid.UUID]() //nolint:gochecknoglobals // reflect type cache

// FilterMapFromStruct builds a FilterMap from the `query` tagged fields of a
// request struct. Plain strings become Text, []string becomes List, and named
// string types, numbers, booleans and UUIDs become Scalar. Nil pointers, empty
// strings, nil UUIDs, embedded structs and fields tagged `filter:"-"` are
// skipped, so optional numeric filters should be pointers.
func FilterMapFromStruct(s any) FilterMap {
	filters := make(FilterMap)

	rv := reflect.Indirect(reflect.ValueOf(s))
	if rv.Kind() != reflect.Struct {
		return filters
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Tag.Get("filter") == "-" {
			continue
		}

		name, _, _ := strings.Cut(sf.Tag.Get("query"), ",")
		if name == "" || name == "-" {
			continue
		}

		if v := filterValueOf(rv.Field(i)); !v.IsAbsent() {
			filters[name] = v
		}
	}

	return filters
}

func filterValueOf(fv reflect.Value) FilterValue {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return Absent()
		}
		fv = fv.Elem()
	}

	if fv.Type() == uuidType {
		id, _ := fv.Interface().(uuid.UUID)
		if id == uuid.Nil {
			return Absent()
		}
		return Scalar(id)
	}

	switch fv.Kind() { //nolint:exhaustive // other kinds are not filterable
	case reflect.String:
		if fv.Type() == reflect.TypeFor[string]() {
			return Text(fv.String())
		}
		if fv.String() == "" {
			return Absent()
		}
		return Scalar(fv.Interface())
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return Absent()
		}
		alts := make([]string, fv.Len())
		for i := range fv.Len() {
			alts[i] = fv.Index(i).String()
		}
		return List(alts...)
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Scalar(fv.Interface())
	default:
		return Absent()
	}
}

// FilterKeys returns the query names FilterMapFromStruct reads from s.
func FilterKeys(s any) []string {
	rt := reflect.TypeOf(s)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil
	}

	keys := make([]string, 0, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Tag.Get("filter") == "-" {
			continue
		}
		if name, _, _ := strings.Cut(sf.Tag.Get("query"), ","); name != "" && name != "-" {
			keys = append(keys, name)
		}
	}
	return keys
}
