package bulkload

// Totals summarizes a Report. It is always derived from the report's lists.
type Totals struct {
	Created int `json:"created"`
	Errored int `json:"errored"`
	Warning int `json:"warning"`
}

// Add returns the element-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Created: t.Created + o.Created,
		Errored: t.Errored + o.Errored,
		Warning: t.Warning + o.Warning,
	}
}

// Report collects the outcome of every row of one bulk load.
type Report struct {
	Filename string   `json:"filename"`
	Totals   Totals   `json:"totals"`
	Created  []string `json:"created"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewReport creates an empty report for filename.
func NewReport(filename string) *Report {
	return &Report{
		Filename: filename,
		Created:  []string{},
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddCreated records a row that was stored.
func (r *Report) AddCreated(msg string) { r.Created = append(r.Created, msg) }

// AddWarning records a row that was skipped because it already exists.
func (r *Report) AddWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// AddError records a row that failed.
func (r *Report) AddError(msg string) { r.Errors = append(r.Errors, msg) }

// HasErrors reports whether any row failed.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// UpdateTotals recomputes Totals from the list lengths. Calling it again changes nothing.
func (r *Report) UpdateTotals() {
	r.Totals = Totals{
		Created: len(r.Created),
		Errored: len(r.Errors),
		Warning: len(r.Warnings),
	}
}
