// Package pagination carries the offset/limit window of list requests and the
// envelope list responses are returned in.
package pagination

// Request is the offset/limit window embedded in list request structs.
// A nil Limit means "not sent" and takes the default; an explicit zero means unlimited.
type Request struct {
	Offset int  `query:"offset" json:"offset" validate:"gte=0"`
	Limit  *int `query:"limit"  json:"limit"  validate:"omitempty,gte=0"`
}

// Window returns the effective offset and limit. A limit of 0 means no limit.
func (r Request) Window(opts ...Option) (offset, limit int) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	offset = max(r.Offset, 0)
	if r.Limit == nil {
		return offset, o.DefaultLimit
	}

	limit = max(*r.Limit, 0)
	if o.MaxLimit > 0 && (limit == 0 || limit > o.MaxLimit) {
		limit = o.MaxLimit
	}
	return offset, limit
}

// ListResponse is the envelope for filtered list results.
type ListResponse[T any] struct {
	Entities           []T            `json:"entities"`
	EntitiesCount      int            `json:"entities_count"`
	TotalEntitiesCount int            `json:"total_entities_count"`
	Limit              int            `json:"limit"`
	Offset             int            `json:"offset"`
	Filters            map[string]any `json:"filters"`
}

// NewListResponse creates a list response from a page of items and the total before paging.
func NewListResponse[T any](items []T, total, offset, limit int, filters map[string]any) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	if filters == nil {
		filters = map[string]any{}
	}

	return ListResponse[T]{
		Entities:           items,
		EntitiesCount:      len(items),
		TotalEntitiesCount: total,
		Limit:              limit,
		Offset:             offset,
		Filters:            filters,
	}
}
