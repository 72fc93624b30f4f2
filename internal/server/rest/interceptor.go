package rest

import (
	"time"

	"github.com/bikram73/My-Bank/internal/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	sessionKey   ctxKey = "sessionToken"
)

// requestInterceptor assigns a request id, runs the chain, and logs and
// counts the request once its final status is known.
func (s *HTTPServer) requestInterceptor(c *fiber.Ctx) error {
	start := time.Now()

	requestID := c.Get(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, requestID)
	c.Locals(requestIDKey, requestID)

	if err := c.Next(); err != nil {
		// resolve the status now so it can be logged
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path

	s.metrics.ObserveRequest(c.Method(), route, status)
	s.logger.Info(c.UserContext(), "request",
		"request_id", requestID,
		"method", c.Method(),
		"route", route,
		"status", status,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// requireSession rejects requests without the session cookie and stashes
// its value for the handler.
func requireSession(c *fiber.Ctx) error {
	token := c.Cookies(common.SessionCookieName)
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	c.Locals(sessionKey, token)
	return c.Next()
}

func sessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(sessionKey).(string)
	return token
}

// authRateLimit throttles credential endpoints per client IP. perMinute <= 0
// disables it.
func authRateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}
