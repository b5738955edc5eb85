package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// requireRole lets through sessions holding any of roles. It must run after authMiddleware.
func requireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := mustSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context session")
			}
			if sess.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func rateLimitMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(conf.Server.RateLimit)),
	})
}

// bodyLimit leaves room for the multipart envelope around the largest allowed upload.
func bodyLimit(conf *core.Config) string {
	return strconv.FormatInt(conf.Storage.MaxUploadSize+1<<20, 10)
}
