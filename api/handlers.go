package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/sitesmith/gateway"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
)

// statusClientClosedRequest is the de facto status for a request the
// caller abandoned before a response was ready.
const statusClientClosedRequest = 499

const (
	msgInvalidJSON      = "Invalid JSON body"
	msgCancelled        = "Request cancelled"
	msgTemplateNotFound = "Template not found"
	msgInternal         = "Internal server error"
)

// handleHealth returns a liveness response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		OK:        true,
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCheckEnv reports which providers are configured.
func (s *Server) handleCheckEnv(c *fiber.Ctx) error {
	statuses := s.gateway.Environment()

	env := make(map[string]providerEnv, len(statuses))
	for _, st := range statuses {
		env[st.ID] = providerEnv{
			Name:             st.Name,
			APIKeyConfigured: st.APIKeyConfigured,
			ModelConfigured:  st.ModelConfigured,
			BaseURL:          st.BaseURL,
			DefaultModel:     st.DefaultModel,
			Model:            st.Model,
		}
	}

	return c.JSON(checkEnvResponse{
		OK:  true,
		Env: env,
		RateLimiting: rateLimiting{
			Enabled: s.limiter.Enabled(),
			Limit:   s.limiter.Limit(),
		},
	})
}

// handleTestConnection probes one provider with a short prompt.
func (s *Server) handleTestConnection(c *fiber.Ctx) error {
	var req testConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	if req.Provider == "" {
		return fail(c, fiber.StatusBadRequest, "Provider is required")
	}

	res, err := s.gateway.TestConnection(c.UserContext(), req.Provider, req.Model)
	if err != nil {
		var unknown *provider.UnknownProviderError
		switch {
		case errors.As(err, &unknown):
			return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown provider: %s", req.Provider))
		case errors.Is(err, gateway.ErrProviderNotConfigured):
			return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Provider %s is not configured", req.Provider))
		default:
			s.logger.Warn("connection test failed", "provider", req.Provider, "error", err)
			return fail(c, fiber.StatusInternalServerError, fmt.Sprintf("Connection test failed for %s", req.Provider))
		}
	}

	return c.JSON(testConnectionResponse{
		OK:       true,
		Message:  fmt.Sprintf("Successfully connected to %s", res.Provider),
		Provider: res.Provider,
		Model:    res.Model,
		Response: res.Response,
	})
}

// handleAskAI runs one generation through the fallback gateway.
func (s *Server) handleAskAI(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, msgInvalidJSON)
	}

	res, err := s.gateway.Generate(c.UserContext(), gateway.Request{
		Prompt:      req.Prompt,
		Provider:    req.Provider,
		Model:       req.Model,
		SessionID:   req.SessionID,
		TemplateID:  req.TemplateID,
		Stack:       req.Stack,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return s.generateError(c, err)
	}

	return c.JSON(askResponse{
		OK:           true,
		Response:     res.Text,
		ModelUsed:    res.ModelUsed,
		ProviderUsed: res.ProviderUsed,
		TokensUsed:   res.TokensUsed,
	})
}

func (s *Server) generateError(c *fiber.Ctx, err error) error {
	var (
		validation *gateway.ValidationError
		exhausted  *gateway.ExhaustedError
	)

	switch {
	case errors.As(err, &validation):
		return fail(c, fiber.StatusBadRequest, validation.Message)
	case errors.Is(err, gateway.ErrNoProviderConfigured):
		return fail(c, fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, gateway.ErrCancelled):
		return fail(c, statusClientClosedRequest, msgCancelled)
	case errors.As(err, &exhausted):
		return c.Status(fiber.StatusInternalServerError).JSON(exhaustedResponse{
			OK:                 false,
			Message:            fmt.Sprintf("All AI providers failed. Last error: %s", exhausted.LastError),
			ProvidersAttempted: exhausted.Attempted,
		})
	default:
		s.logger.Error("unexpected generation error", "error", err)
		return fail(c, fiber.StatusInternalServerError, msgInternal)
	}
}

// handleListTemplates returns the template summaries in catalog order.
func (s *Server) handleListTemplates(c *fiber.Ctx) error {
	return c.JSON(templateListResponse{
		OK:        true,
		Templates: s.catalog.List(),
	})
}

// handleGetTemplate returns one full template.
func (s *Server) handleGetTemplate(c *fiber.Ctx) error {
	t, ok := s.catalog.Get(c.Params("id"))
	if !ok {
		return fail(c, fiber.StatusNotFound, msgTemplateNotFound)
	}
	return c.JSON(templateResponse{OK: true, Template: t})
}

// handleError renders errors that escape a handler (including recovered
// panics and unmatched routes) in the standard envelope.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternal

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.logger.Error("unhandled request error", "path", c.Path(), "error", err)
	}

	return fail(c, code, msg)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{OK: false, Message: message})
}

func rateLimitMessage(waitMinutes int) string {
	unit := "minutes"
	if waitMinutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Rate limit exceeded. Please try again in %d %s.", waitMinutes, unit)
}
