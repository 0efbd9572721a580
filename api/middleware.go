package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/sitesmith/pkg/ratelimit"
)

// bindContext gives every handler a context that is cancelled when the
// server shuts down, so in-flight generations stop waiting on providers.
func (s *Server) bindContext(c *fiber.Ctx) error {
	c.SetUserContext(s.ctx)
	return c.Next()
}

// accessLog logs one line per request after the handler chain completes.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	attrs := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
		"client", s.clientID(c),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Warn("request completed", attrs...)
	} else {
		s.logger.Debug("request completed", attrs...)
	}

	return err
}

// rateLimit gates the generation endpoints through the sliding-window limiter.
func (s *Server) rateLimit(c *fiber.Ctx) error {
	if !s.limiter.Enabled() || ratelimit.IsExempt(c.Path()) {
		return c.Next()
	}

	client := s.clientID(c)
	decision, err := s.limiter.Admit(c.UserContext(), client)
	if err != nil {
		s.logger.Error("rate limit store failed, admitting request",
			"client", client,
			"error", err,
		)
	}

	if !decision.Admitted {
		wait := decision.WaitMinutes()
		s.logger.Info("rate limit exceeded",
			"client", client,
			"wait_minutes", wait,
		)

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(decision.RetryAfterSeconds()))
		return c.Status(fiber.StatusTooManyRequests).JSON(rateLimitedResponse{
			OK:              false,
			Message:         rateLimitMessage(wait),
			WaitTimeMinutes: wait,
			ResetTime:       decision.ResetAt.UTC().Format(time.RFC3339),
		})
	}

	return c.Next()
}

func (s *Server) clientID(c *fiber.Ctx) string {
	return ratelimit.ClientID(c.Get(fiber.HeaderXForwardedFor), c.IP())
}
