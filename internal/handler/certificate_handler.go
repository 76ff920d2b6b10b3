package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/service"
	"github.com/vidyadoc/slc-api/internal/utils"
)

// CertificateHandler wires leaving certificate endpoints.
type CertificateHandler struct {
	service service.CertificateService
	logger  zerolog.Logger
}

// NewCertificateHandler constructs the handler.
func NewCertificateHandler(service service.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// Register attaches certificate routes to the router group.
func (h *CertificateHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/:id/status", h.updateStatus)
	router.Get("/:id/status/transitions", h.transitions)
	router.Get("/:id/status-history", h.history)
}

func (h *CertificateHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	schoolID, err := parseQueryUint(c, "school_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school_id")
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	req := dto.CertificateListRequest{
		Page:         page,
		PageSize:     pageSize,
		SchoolID:     schoolID,
		StudentID:    studentID,
		SerialPrefix: c.Query("serial_prefix"),
		Status:       c.Query("status"),
		LeavingFrom:  c.Query("leaving_from"),
		LeavingTo:    c.Query("leaving_to"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	response, err := h.service.List(c.Context(), req, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list certificates")
	}

	return utils.SendSuccess(c, "certificates retrieved", response)
}

func (h *CertificateHandler) create(c *fiber.Ctx) error {
	var payload dto.CertificateCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	certificate, err := h.service.Create(c.Context(), payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create certificate")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "certificate created", certificate)
}

func (h *CertificateHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	certificate, err := h.service.Get(c.Context(), id, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch certificate")
	}

	return utils.SendSuccess(c, "certificate retrieved", certificate)
}

func (h *CertificateHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	var payload dto.CertificateUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	certificate, err := h.service.Update(c.Context(), id, payload, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update certificate")
	}

	return utils.SendSuccess(c, "certificate updated", certificate)
}

func (h *CertificateHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	if err := h.service.Delete(c.Context(), id, actorFromContext(c), originFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete certificate")
	}

	return utils.SendSuccess(c, "certificate deleted", nil)
}

func (h *CertificateHandler) updateStatus(c *fiber.Ctx) error {
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

	certificate, err := h.service.Transition(c.Context(), id, params, actorFromContext(c), originFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update certificate status")
	}

	return utils.SendSuccess(c, "certificate status updated", certificate)
}

func (h *CertificateHandler) transitions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	response, err := h.service.Transitions(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch certificate transitions")
	}

	return utils.SendSuccess(c, "transitions retrieved", response)
}

func (h *CertificateHandler) history(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	history, err := h.service.History(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch certificate status history")
	}

	return utils.SendSuccess(c, "status history retrieved", history)
}
