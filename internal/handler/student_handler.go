package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/service"
	"github.com/vidyadoc/slc-api/internal/utils"
)

// StudentHandler wires student record endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the router group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/status", h.updateStatus)
	router.Get("/:id/status/transitions", h.transitions)
	router.Get("/:id/status-history", h.history)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	req := dto.StudentListRequest{
		Page:      page,
		PageSize:  pageSize,
		Search:    c.Query("search"),
		District:  c.Query("district"),
		Status:    c.Query("status"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	response, err := h.service.List(c.Context(), req, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list students")
	}

	return utils.SendSuccess(c, "students retrieved", response)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Create(c.Context(), payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	student, err := h.service.Get(c.Context(), id, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch student")
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var payload dto.StudentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Update(c.Context(), id, payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update student")
	}

	return utils.SendSuccess(c, "student updated", student)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.service.Delete(c.Context(), id, actorFromContext(c), originFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", nil)
}

func (h *StudentHandler) updateStatus(c *fiber.Ctx) error {
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

	student, err := h.service.Transition(c.Context(), id, params, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update student status")
	}

	return utils.SendSuccess(c, "student status updated", student)
}

func (h *StudentHandler) transitions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.service.Transitions(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch student transitions")
	}

	return utils.SendSuccess(c, "transitions retrieved", response)
}

func (h *StudentHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	history, err := h.service.History(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch student status history")
	}

	return utils.SendSuccess(c, "status history retrieved", history)
}
