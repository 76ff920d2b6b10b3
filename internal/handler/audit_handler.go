package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/repository"
	"github.com/vidyadoc/slc-api/internal/service"
	"github.com/vidyadoc/slc-api/internal/utils"
)

// AuditHandler exposes the read side of the audit trail.
type AuditHandler struct {
	audit  service.AuditRecorder
	logger zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(audit service.AuditRecorder, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:table/:id", h.recordTrail)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page, pageSize, err := parsePagination(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	recordID, err := parseQueryUint(c, "record_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid record_id")
	}
	changedBy, err := parseQueryUint(c, "changed_by")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid changed_by")
	}

	filter := repository.AuditLogFilter{
		TableName: c.Query("table_name"),
		RecordID:  recordID,
		Action:    c.Query("action"),
		Page:      page,
		PageSize:  pageSize,
	}
	if changedBy != 0 {
		filter.ChangedBy = &changedBy
	}

	if filter.StartDate, err = parseQueryDate(c, "start_date"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
	}
	if filter.EndDate, err = parseQueryDate(c, "end_date"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
	}
	if filter.EndDate != nil {
		// End date is inclusive, widen to the end of the day.
		end := filter.EndDate.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	entries, total, err := h.audit.List(c.Context(), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list audit entries")
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	return utils.SendSuccess(c, "audit entries retrieved", dto.AuditListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	})
}

func (h *AuditHandler) recordTrail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendAppError(c, err)
	}

	table := c.Params("table")
	entries, err := h.audit.FindByRecord(c.Context(), table, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to fetch audit trail")
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditEntryResponse(entry))
	}

	return utils.SendSuccess(c, "audit trail retrieved", items)
}

func parseQueryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
