package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bizsuite/ledger-api/internal/application/dto"
	"github.com/bizsuite/ledger-api/internal/infrastructure/metrics"
)

// Cabeceras de contexto. La autenticación la resuelve el gateway que está delante de la API
// y propaga organización y actor en estas cabeceras.
const (
	HeaderOrganizationID = "X-Organization-ID"
	HeaderActorID        = "X-Actor-ID"
	HeaderRequestID      = "X-Request-ID"
)

// Locals keys para organización, actor y request id en Fiber.
const (
	LocalOrganizationID = "organization_id"
	LocalActorID        = "actor_id"
	LocalRequestID      = "request_id"
)

// RequestID propaga X-Request-ID o genera uno nuevo.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals(LocalRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// OrganizationContext exige X-Organization-ID y guarda organización y actor en c.Locals.
func OrganizationContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID := c.Get(HeaderOrganizationID)
		if orgID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_ORGANIZATION", Message: HeaderOrganizationID + " requerido",
			})
		}
		c.Locals(LocalOrganizationID, orgID)
		c.Locals(LocalActorID, c.Get(HeaderActorID))
		return c.Next()
	}
}

// RequireActor bloquea las operaciones que registran un actor (crear, aprobar, completar...).
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetActorID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_ACTOR", Message: HeaderActorID + " requerido",
			})
		}
		return c.Next()
	}
}

// RequestLogger registra cada petición con zerolog y la mide en Prometheus (m puede ser nil).
func RequestLogger(log zerolog.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.ObserveHTTP(c.Method(), route, status, elapsed)

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("route", route).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("request_id", localString(c, LocalRequestID)).
			Str("organization_id", localString(c, LocalOrganizationID)).
			Msg("http request")
		return err
	}
}

// GetOrganizationID devuelve la organización del contexto (después de OrganizationContext).
func GetOrganizationID(c *fiber.Ctx) string {
	return localString(c, LocalOrganizationID)
}

// GetActorID devuelve el actor del contexto; vacío si no se envió X-Actor-ID.
func GetActorID(c *fiber.Ctx) string {
	return localString(c, LocalActorID)
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
