package server

import (
	"errors"
	"sync"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/rise-and-shine/tabletop/meta"
)

const (
	// codeRouterError is used when the router encounters an error.
	codeRouterError = "ROUTER_ERROR"
)

var (
	codeStatusesMu sync.RWMutex      //nolint:gochecknoglobals // registry
	codeStatuses   = map[string]int{} //nolint:gochecknoglobals // registry
)

// MapCodeToStatus makes errors with the given code answer with status instead
// of the status derived from their errx type.
func MapCodeToStatus(code string, status int) {
	codeStatusesMu.Lock()
	defer codeStatusesMu.Unlock()
	codeStatuses[code] = status
}

// WriteErrorResponse writes a standardized error response to the Fiber context.
func WriteErrorResponse(c *fiber.Ctx, err error, hideDetails bool) error {
	e := mapAnyErrorToErrorX(err)
	status := statusOf(e)

	c.Status(status)
	_ = c.JSON(map[string]any{
		"trace_id": meta.Find(c.UserContext(), meta.TraceID),
		"error":    buildErrorSchema(e, status, hideDetails),
	})

	return e
}

// customErrorHandler returns a Fiber error handler that ensures consistent error responses.
//
// If the response status code is already set to an error (>= 400), it does not override it.
func customErrorHandler(hideDetails bool) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		r := ctx.Response()

		// if error already handled, skip processing by returning nil
		if r != nil && r.StatusCode() >= 400 {
			return nil
		}

		_ = WriteErrorResponse(ctx, err, hideDetails)
		return nil
	}
}

// buildErrorSchema constructs an error response object from an ErrorX instance.
// When hideDetails is false, includes trace and details information.
func buildErrorSchema(e errx.ErrorX, status int, hideDetails bool) errorSchema {
	errResp := errorSchema{
		Code:    e.Code(),
		Message: utils.StatusMessage(status),
		Cause:   e.Error(),
		Fields:  e.Fields(),
	}
	if !hideDetails {
		errResp.Trace = e.Trace()
		errResp.Details = e.Details()
	}
	return errResp
}

// errorSchema defines the structure of error responses returned to clients.
type errorSchema struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Cause   string            `json:"cause"`
	Trace   string            `json:"trace,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

var typeStatuses = map[errx.Type]int{ //nolint:gochecknoglobals // fixed lookup table
	errx.T_Authentication: fiber.StatusUnauthorized,
	errx.T_Forbidden:      fiber.StatusForbidden,
	errx.T_NotFound:       fiber.StatusNotFound,
	errx.T_Validation:     fiber.StatusBadRequest,
	errx.T_Conflict:       fiber.StatusConflict,
	errx.T_Throttling:     fiber.StatusTooManyRequests,
	errx.T_Internal:       fiber.StatusInternalServerError,
}

// statusOf prefers a status registered with MapCodeToStatus over the type's status.
func statusOf(e errx.ErrorX) int {
	codeStatusesMu.RLock()
	status, ok := codeStatuses[e.Code()]
	codeStatusesMu.RUnlock()
	if ok {
		return status
	}
	if status, ok = typeStatuses[e.Type()]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// typeOfStatus inverts typeStatuses for errors raised by fiber itself, such as
// unknown routes or oversized bodies. Other 4xx statuses count as validation.
func typeOfStatus(status int) errx.Type {
	for t, s := range typeStatuses {
		if s == status && t != errx.T_Validation {
			return t
		}
	}
	if status >= fiber.StatusBadRequest && status < fiber.StatusInternalServerError {
		return errx.T_Validation
	}
	return errx.T_Internal
}

// mapAnyErrorToErrorX converts any error to an errx.ErrorX.
func mapAnyErrorToErrorX(err error) errx.ErrorX {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		err = errx.New(
			fiberErr.Message,
			errx.WithCode(codeRouterError),
			errx.WithType(typeOfStatus(fiberErr.Code)),
			errx.WithDetails(errx.D{"fiber_code": fiberErr.Code}),
		)
	}
	return errx.AsErrorX(err)
}
