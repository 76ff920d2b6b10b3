package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/middleware"
	"github.com/vidyadoc/slc-api/internal/service"
	"github.com/vidyadoc/slc-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, apperrors.Validation("invalid identifier", map[string]string{name: "must be a positive integer"})
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// parsePagination reads page and page_size (limit is accepted as an alias)
// with sane bounds.
func parsePagination(c *fiber.Ctx) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if pageSize == 0 {
		if pageSize, err = parseQueryInt(c, "limit"); err != nil {
			return 0, 0, err
		}
	}
	if pageSize <= 0 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}

	return page, pageSize, nil
}

// actorFromContext resolves the authenticated actor placed in request locals
// by the auth middleware.
func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}

	if v := c.Locals("user_id"); v != nil {
		switch id := v.(type) {
		case uint:
			actor.ID = id
		case int:
			if id > 0 {
				actor.ID = uint(id)
			}
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			actor.Role = strings.ToLower(strings.TrimSpace(role))
		}
	}

	return actor
}

// originFromContext captures request provenance for the audit trail.
func originFromContext(c *fiber.Ctx) service.Origin {
	return service.Origin{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Location:  strings.TrimSpace(c.Get("X-Client-Location")),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base.With().
		Str("correlation_id", middleware.GetCorrelationID(c)).
		Logger()
	return &logger
}

// sendServiceError logs unexpected faults and renders the tagged error body.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, message string) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindStorageUnavailable, apperrors.Kind(""):
		requestLogger(logger, c).Error().Err(err).Msg(message)
	}
	return utils.SendAppError(c, err)
}
