package pagination_test

import (
	"fmt"

	"github.com/rise-and-shine/tabletop/pagination"
)

// SpellListRequest shows how to embed pagination.Request in a request struct.
type SpellListRequest struct {
	pagination.Request

	Name  string `query:"name"`
	Level *int   `query:"level"`
}

func Example_defaults() {
	req := SpellListRequest{Name: "fire"}

	offset, limit := req.Window()
	fmt.Printf("OFFSET %d LIMIT %d\n", offset, limit)

	// Output:
	// OFFSET 0 LIMIT 100
}

func Example_unlimited() {
	zero := 0
	req := SpellListRequest{Request: pagination.Request{Offset: 5, Limit: &zero}}

	offset, limit := req.Window()
	fmt.Printf("OFFSET %d LIMIT %d\n", offset, limit)

	offset, limit = req.Window(pagination.WithMaxLimit(50))
	fmt.Printf("capped: OFFSET %d LIMIT %d\n", offset, limit)

	// Output:
	// OFFSET 5 LIMIT 0
	// capped: OFFSET 5 LIMIT 50
}

func Example_listResponse() {
	resp := pagination.NewListResponse(
		[]string{"acid splash", "fireball"},
		7,
		0,
		2,
		map[string]any{"name": "acid,fire"},
	)

	fmt.Printf("%d of %d (limit %d, offset %d)\n",
		resp.EntitiesCount, resp.TotalEntitiesCount, resp.Limit, resp.Offset)

	// Output:
	// 2 of 7 (limit 2, offset 0)
}
