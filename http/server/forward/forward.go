package forward

import (
	"fmt"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/mask"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/ucdef"
	"github.com/rise-and-shine/tabletop/val"
)

// bodies larger than this are logged by size only
const maxLoggedBody = 8 << 10

// ToUserAction adapts uc to a fiber handler. I must be a pointer to a struct;
// it is filled from the JSON body, query string and path params, then
// validated before Execute runs. O is written as JSON with status 200.
//
// Each call logs one debug line carrying the masked request and response.
// Validation failures log at warn, use case failures at error.
func ToUserAction[I, O any](uc ucdef.UserAction[I, O]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := newRequest[I]()
		if err != nil {
			return errx.Wrap(err)
		}
		if err = decodeRequest(c, req); err != nil {
			return errx.Wrap(err)
		}

		ctx := meta.InjectMetaToContext(c.UserContext(), map[meta.ContextKey]string{
			meta.Operation: uc.OperationID(),
		})
		log := logger.Named("http.handler").
			WithContext(ctx).
			With("operation_id", uc.OperationID()).
			With("request_body", loggable(req, len(c.Body())))

		if err = val.ValidateSchema(req); err != nil {
			log.Warnx(err)
			return errx.Wrap(err)
		}

		resp, err := uc.Execute(ctx, req)
		if err != nil {
			log.Errorx(err)
			return errx.Wrap(err)
		}

		size, err := writeJSON(c, resp)
		if err != nil {
			log.Errorx(err)
			return errx.Wrap(err)
		}

		log.With("response_body", loggable(resp, size)).Debug("")
		return nil
	}
}

func loggable(v any, size int) any {
	if size > maxLoggedBody {
		return fmt.Sprintf("too large for logging: %d bytes", size)
	}
	return mask.StructToOrdMap(v)
}

func writeJSON(c *fiber.Ctx, data any) (int, error) {
	raw, err := c.App().Config().JSONEncoder(data)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	c.Response().SetBodyRaw(raw)
	c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
	return len(raw), nil
}
