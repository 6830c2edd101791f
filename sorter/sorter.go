// Package sorter parses "order_by" strings such as "level:desc,name" into
// structured sorting options.
package sorter

import (
	"fmt"
	"strings"

	"github.com/code19m/errx"
)

type (
	SortOpts []Opt

	SortDirection string
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"

	// CodeInvalidSort is returned for malformed sort strings.
	CodeInvalidSort = "INVALID_SORT"

	expectedPartsCount = 2
)

// Parse turns a comma separated list of "field[:direction]" pairs into SortOpts.
// A missing direction means ascending. Empty input yields nil.
func Parse(sortString string) (SortOpts, error) {
	sortString = strings.TrimSpace(sortString)
	if sortString == "" {
		return nil, nil
	}

	var options SortOpts
	for pair := range strings.SplitSeq(sortString, ",") {
		parts := strings.SplitN(pair, ":", expectedPartsCount)

		field := strings.TrimSpace(parts[0])
		if field == "" {
			return nil, invalid(pair, "empty field")
		}

		direction := Asc
		if len(parts) == expectedPartsCount {
			direction = SortDirection(strings.ToLower(strings.TrimSpace(parts[1])))
		}
		if direction != Asc && direction != Desc {
			return nil, invalid(pair, "direction must be asc or desc")
		}

		options = append(options, Opt{F: field, D: direction})
	}

	return options, nil
}

// Make creates SortOpts from a variadic list of Opt.
func Make(sortOptions ...Opt) SortOpts {
	return sortOptions
}

// Fields returns the field names in order.
func (s SortOpts) Fields() []string {
	fields := make([]string, 0, len(s))
	for _, o := range s {
		fields = append(fields, o.F)
	}
	return fields
}

// Opt represents a single sorting option, consisting of a field and a direction.
type Opt struct {
	F string        // F is the field to sort by.
	D SortDirection // D is the sorting direction (asc or desc).
}

// Keyword returns the SQL keyword for the direction.
func (o Opt) Keyword() string {
	if o.D == Desc {
		return "DESC"
	}
	return "ASC"
}

// ToSQL converts an Opt into an SQL-compatible clause (e.g., "name ASC").
func (o Opt) ToSQL() string {
	return o.F + " " + o.Keyword()
}

func invalid(pair, reason string) error {
	return errx.New(
		fmt.Sprintf("invalid sort option %q: %s", strings.TrimSpace(pair), reason),
		errx.WithCode(CodeInvalidSort),
		errx.WithType(errx.T_Validation),
		errx.WithFields(errx.M{"order_by": reason}),
	)
}
