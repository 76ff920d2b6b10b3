package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/service"
	"github.com/vidyadoc/slc-api/internal/utils"
)

// SchoolHandler wires school record endpoints.
type SchoolHandler struct {
	service service.SchoolService
	logger  zerolog.Logger
}

// NewSchoolHandler constructs the handler.
func NewSchoolHandler(service service.SchoolService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		service: service,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register attaches school routes to the router group.
func (h *SchoolHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/status", h.updateStatus)
	router.Get("/:id/status/transitions", h.transitions)
	router.Get("/:id/status-history", h.history)
}

func (h *SchoolHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	req := dto.SchoolListRequest{
		Page:      page,
		PageSize:  pageSize,
		Search:    c.Query("search"),
		District:  c.Query("district"),
		Board:     c.Query("board"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	response, err := h.service.List(c.Context(), req, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list schools")
	}

	return utils.SendSuccess(c, "schools retrieved", response)
}

func (h *SchoolHandler) create(c *fiber.Ctx) error {
	var payload dto.SchoolCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	school, err := h.service.Create(c.Context(), payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create school")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school created", school)
}

func (h *SchoolHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	school, err := h.service.Get(c.Context(), id, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch school")
	}

	return utils.SendSuccess(c, "school retrieved", school)
}

func (h *SchoolHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var payload dto.SchoolUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	school, err := h.service.Update(c.Context(), id, payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update school")
	}

	return utils.SendSuccess(c, "school updated", school)
}

func (h *SchoolHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.service.Delete(c.Context(), id, actorFromContext(c), originFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete school")
	}

	return utils.SendSuccess(c, "school deleted", nil)
}

func (h *SchoolHandler) updateStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var payload dto.StatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	params := service.TransitionParams{
		Status:  payload.Status,
		Reason:  payload.Reason,
		Notes:   payload.Notes,
		Comment: payload.Comment,
	}

	school, err := h.service.Transition(c.Context(), id, params, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update school status")
	}

	return utils.SendSuccess(c, "school status updated", school)
}

func (h *SchoolHandler) transitions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.service.Transitions(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch school transitions")
	}

	return utils.SendSuccess(c, "transitions retrieved", response)
}

func (h *SchoolHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	history, err := h.service.History(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch school status history")
	}

	return utils.SendSuccess(c, "status history retrieved", history)
}
