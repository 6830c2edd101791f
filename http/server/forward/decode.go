// Package forward provides helper functions for forwarding HTTP requests to use cases.
package forward

import (
	"reflect"
	"slices"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
)

const (
	codeInvalidContentType = "INVALID_CONTENT_TYPE"
	codeInvalidJSONBody    = "INVALID_JSON_BODY"
	codeInvalidQueryParams = "INVALID_QUERY_PARAMS"
	codeInvalidPathParams  = "INVALID_PATH_PARAMS"
)

// newRequest creates a new request of type I.
// It ensures that I is a pointer to a struct.
func newRequest[I any]() (I, error) {
	var req I

	reqType := reflect.TypeFor[I]()
	if reqType.Kind() != reflect.Pointer || reqType.Elem().Kind() != reflect.Struct {
		return req, errx.New("input type I must be a pointer to a struct")
	}

	reqVal := reflect.New(reqType.Elem()).Interface().(I) //nolint:errcheck,forcetypeassert // safe type assertion
	return reqVal, nil
}

// decodeRequest fills req from the JSON body (POST, PUT and PATCH only), the
// query string and the path params, in that order.
func decodeRequest[I any](c *fiber.Ctx, req I) error {
	if isJSONMethod(c.Method()) {
		if err := decodeBody(c, req); err != nil {
			return err
		}
	}
	if err := decodeQuery(c, req); err != nil {
		return err
	}
	return decodePath(c, req)
}

// isJSONMethod checks if a method carries a JSON body.
func isJSONMethod(method string) bool {
	return slices.Contains([]string{fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch}, method)
}

// decodeBody decodes the request body into the given request struct.
// It only decodes if the content type is application/json.
func decodeBody[I any](c *fiber.Ctx, req I) error {
	if len(c.Body()) == 0 {
		return nil // No body to decode
	}

	if c.Get(fiber.HeaderContentType) != fiber.MIMEApplicationJSON &&
		c.Get(fiber.HeaderContentType) != fiber.MIMEApplicationJSONCharsetUTF8 {
		return errx.New(
			"content type must be application/json for this request",
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidContentType),
		)
	}

	if err := c.BodyParser(req); err != nil {
		return errx.Wrap(
			err,
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidJSONBody),
		)
	}

	return nil
}

// decodeQuery decodes the query params into the given request struct.
func decodeQuery[I any](c *fiber.Ctx, req I) error {
	if len(c.Queries()) == 0 {
		return nil // No query params to decode
	}

	if err := c.QueryParser(req); err != nil {
		return errx.Wrap(
			err,
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidQueryParams),
		)
	}

	return nil
}

// decodePath decodes the route params into the `params` tagged fields of req.
func decodePath[I any](c *fiber.Ctx, req I) error {
	if len(c.AllParams()) == 0 {
		return nil
	}

	if err := c.ParamsParser(req); err != nil {
		return errx.Wrap(
			err,
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidPathParams),
		)
	}

	return nil
}
