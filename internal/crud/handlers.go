package crud

import (
	"encoding/json"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/http/server/forward"
	"github.com/rise-and-shine/tabletop/http/server/middleware"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/val"
)

const (
	bulkFileField = "file"

	codeInvalidQueryParams = "INVALID_QUERY_PARAMS"
	codeMissingFile        = "MISSING_FILE"
)

// Register mounts the resource routes under /{name}. Writes require a caller.
func (r *Resource[U, E, K, F, C, PC]) Register(router fiber.Router) {
	g := router.Group("/" + r.cfg.Name)

	g.Get("/", forward.ToUserAction(r.ReadMulti()))
	g.Get("/query", r.queryHandler())
	g.Get("/:id", forward.ToUserAction(r.ReadByID()))

	g.Post("/", middleware.RequireActor(), forward.ToUserAction(r.Create()))
	g.Post("/bulk", middleware.RequireActor(), BulkHandler(r.Bulk()))
	g.Patch("/:id", middleware.RequireActor(), r.updateHandler())
	g.Delete("/:id", middleware.RequireActor(), forward.ToUserAction(r.Delete()))
}

// queryHandler decodes paging and filters from the query string separately
// and rejects parameters the entity cannot be filtered by.
func (r *Resource[U, E, K, F, C, PC]) queryHandler() fiber.Handler {
	uc := r.Query()

	return func(c *fiber.Ctx) error {
		for key := range c.Queries() {
			if _, ok := r.filterKeys[key]; !ok {
				return repogen.UnknownFilterError(key, r.cfg.Entity)
			}
		}

		in := new(QueryRequest[F])
		if err := c.QueryParser(&in.Params); err != nil {
			return invalidQuery(err)
		}
		if err := c.QueryParser(&in.Filters); err != nil {
			return invalidQuery(err)
		}

		if err := val.ValidateSchema(&in.Params); err != nil {
			return errx.Wrap(err)
		}
		if err := val.ValidateSchema(&in.Filters); err != nil {
			return errx.Wrap(err)
		}

		resp, err := uc.Execute(c.UserContext(), in)
		if err != nil {
			return errx.Wrap(err)
		}
		return errx.Wrap(c.JSON(resp))
	}
}

// updateHandler keeps the body as raw JSON so that unset keys stay distinguishable from nulls.
func (r *Resource[U, E, K, F, C, PC]) updateHandler() fiber.Handler {
	uc := r.Update()

	return func(c *fiber.Ctx) error {
		in := &UpdateRequest{ID: c.Params("id")}
		if err := json.Unmarshal(c.Body(), &in.Patch); err != nil {
			return errx.Wrap(err, errx.WithCode(CodeInvalidPayload), errx.WithType(errx.T_Validation))
		}

		resp, err := uc.Execute(c.UserContext(), in)
		if err != nil {
			return errx.Wrap(err)
		}
		return errx.Wrap(c.JSON(resp))
	}
}

// BulkHandler decodes the multipart "file" upload as CSV or JSON and hands
// its rows to uc. The report is returned with 200 even when rows failed.
func BulkHandler(uc ucdef.UserAction[*BulkRequest, *bulkload.Report]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(bulkFileField)
		if err != nil {
			return errx.New(
				"multipart field \"file\" is required",
				errx.WithCode(codeMissingFile),
				errx.WithType(errx.T_Validation),
			)
		}

		f, err := fh.Open()
		if err != nil {
			return errx.Wrap(err)
		}
		defer f.Close()

		rows, err := bulkload.Decode(f, fh.Header.Get(fiber.HeaderContentType), fh.Filename)
		if err != nil {
			return errx.Wrap(err)
		}

		report, err := uc.Execute(c.UserContext(), &BulkRequest{Filename: fh.Filename, Rows: rows})
		if err != nil {
			return errx.Wrap(err)
		}
		return errx.Wrap(c.JSON(report))
	}
}

func invalidQuery(err error) error {
	return errx.Wrap(err, errx.WithCode(codeInvalidQueryParams), errx.WithType(errx.T_Validation))
}
