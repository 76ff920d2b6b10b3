package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/repository"
	"github.com/vidyadoc/slc-api/internal/status"
)

// CertificateService orchestrates leaving certificate use cases. Single
// certificate reads are cached: the joined school and student display fields
// make them the most expensive fetch in the API.
type CertificateService interface {
	Create(ctx context.Context, req dto.CertificateCreateRequest, actor Actor, origin Origin) (dto.CertificateResponse, error)
	Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.CertificateResponse, error)
	List(ctx context.Context, req dto.CertificateListRequest, actor Actor) (dto.CertificateListResponse, error)
	Update(ctx context.Context, id uint, req dto.CertificateUpdateRequest, actor Actor, origin Origin) (dto.CertificateResponse, error)
	Delete(ctx context.Context, id uint, actor Actor, origin Origin) error
	Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.CertificateResponse, error)
	Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error)
	History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error)
}

type certificateService struct {
	repo      repository.CertificateRepository
	workflow  WorkflowService
	audit     AuditRecorder
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewCertificateService constructs the certificate service. cache may be nil
// when redis is not configured.
func NewCertificateService(repo repository.CertificateRepository, workflow WorkflowService, audit AuditRecorder, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) CertificateService {
	return &certificateService{
		repo:      repo,
		workflow:  workflow,
		audit:     audit,
		validator: validate,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "certificate_service").Logger(),
	}
}

func (s *certificateService) Create(ctx context.Context, req dto.CertificateCreateRequest, actor Actor, origin Origin) (dto.CertificateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CertificateResponse{}, validationError(err)
	}
	if err := policy.Authorize(actor.Role, policy.ActionCreate, status.Draft); err != nil {
		return dto.CertificateResponse{}, err
	}

	admissionDate, err := parseDate(req.AdmissionDate)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	leavingDate, err := parseDate(req.LeavingDate)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	certificateDate, err := parseDate(req.CertificateDate)
	if err != nil {
		return dto.CertificateResponse{}, err
	}

	certificate := models.LeavingCertificate{
		SchoolID:              req.SchoolID,
		StudentID:             req.StudentID,
		SerialNo:              strPtr(req.SerialNo),
		PreviousSchool:        strings.TrimSpace(req.PreviousSchool),
		PreviousClass:         strings.TrimSpace(req.PreviousClass),
		AdmissionDate:         admissionDate,
		AdmissionClass:        strings.TrimSpace(req.AdmissionClass),
		ProgressInStudies:     strings.TrimSpace(req.ProgressInStudies),
		Conduct:               strings.TrimSpace(req.Conduct),
		LeavingDate:           leavingDate,
		LeavingClass:          strings.TrimSpace(req.LeavingClass),
		StudyingClassAndSince: strings.TrimSpace(req.StudyingClassAndSince),
		ReasonForLeaving:      strings.TrimSpace(req.ReasonForLeaving),
		Remarks:               strings.TrimSpace(req.Remarks),
		GeneralRegisterRef:    strings.TrimSpace(req.GeneralRegisterRef),
		CertificateDate:       certificateDate,
		ClassTeacherName:      strings.TrimSpace(req.ClassTeacherName),
		ClerkName:             strings.TrimSpace(req.ClerkName),
		HeadmasterName:        strings.TrimSpace(req.HeadmasterName),
		Status:                status.Draft,
		CreatedBy:             actorID(actor),
	}

	if err := s.repo.Create(ctx, &certificate); err != nil {
		return dto.CertificateResponse{}, err
	}

	s.audit.RecordInsert(s.repo.Table(), certificate.ID, certificate.Snapshot(), actor, origin)
	s.logger.Info().Uint("certificate_id", certificate.ID).Uint("actor_id", actor.ID).Msg("certificate drafted")

	// Refetch to resolve the school and student display joins.
	created, err := s.repo.FindByID(ctx, certificate.ID)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	return dto.NewCertificateResponse(created), nil
}

func (s *certificateService) Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.CertificateResponse, error) {
	if cached, ok := s.cachedResponse(ctx, id); ok {
		if !policy.CanView(actor.Role, status.Status(cached.Status)) {
			return dto.CertificateResponse{}, notFoundFor(s.repo.Table())
		}
		s.audit.RecordView(s.repo.Table(), id, actor, origin)
		return cached, nil
	}

	certificate, err := s.visibleCertificate(ctx, id, actor)
	if err != nil {
		return dto.CertificateResponse{}, err
	}

	response := dto.NewCertificateResponse(certificate)
	s.storeCache(ctx, id, response)
	s.audit.RecordView(s.repo.Table(), id, actor, origin)

	return response, nil
}

func (s *certificateService) List(ctx context.Context, req dto.CertificateListRequest, actor Actor) (dto.CertificateListResponse, error) {
	leavingFrom, err := parseDate(req.LeavingFrom)
	if err != nil {
		return dto.CertificateListResponse{}, err
	}
	leavingTo, err := parseDate(req.LeavingTo)
	if err != nil {
		return dto.CertificateListResponse{}, err
	}

	filter := repository.CertificateFilter{
		SchoolID:     req.SchoolID,
		StudentID:    req.StudentID,
		SerialPrefix: strings.TrimSpace(req.SerialPrefix),
		Status:       status.Status(strings.TrimSpace(req.Status)),
		LeavingFrom:  leavingFrom,
		LeavingTo:    leavingTo,
		Role:         actor.Role,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}

	certificates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.CertificateListResponse{}, err
	}

	items := make([]dto.CertificateResponse, 0, len(certificates))
	for _, certificate := range certificates {
		items = append(items, dto.NewCertificateResponse(certificate))
	}

	return dto.CertificateListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *certificateService) Update(ctx context.Context, id uint, req dto.CertificateUpdateRequest, actor Actor, origin Origin) (dto.CertificateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CertificateResponse{}, validationError(err)
	}

	current, err := s.visibleCertificate(ctx, id, actor)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	if err := policy.Authorize(actor.Role, policy.ActionEdit, current.Status); err != nil {
		return dto.CertificateResponse{}, err
	}

	updates, err := certificateUpdates(req)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	if len(updates) == 0 {
		return dto.NewCertificateResponse(current), nil
	}
	updates["updated_by"] = actor.ID

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.CertificateResponse{}, err
	}

	s.audit.RecordUpdate(s.repo.Table(), id, current.Snapshot(), updated.Snapshot(), actor, origin)
	s.dropCache(ctx, id)

	return dto.NewCertificateResponse(updated), nil
}

func (s *certificateService) Delete(ctx context.Context, id uint, actor Actor, origin Origin) error {
	if _, err := s.workflow.Delete(ctx, s.repo, id, actor, origin); err != nil {
		return err
	}
	s.dropCache(ctx, id)
	return nil
}

func (s *certificateService) Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.CertificateResponse, error) {
	if _, err := s.workflow.Transition(ctx, s.repo, id, params, actor, origin); err != nil {
		return dto.CertificateResponse{}, err
	}
	s.dropCache(ctx, id)

	certificate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CertificateResponse{}, err
	}
	return dto.NewCertificateResponse(certificate), nil
}

func (s *certificateService) Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error) {
	return s.workflow.Transitions(ctx, s.repo, id, actor)
}

func (s *certificateService) History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error) {
	entries, err := s.workflow.History(ctx, s.repo, id, actor)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewStatusHistoryResponse(entry))
	}
	return responses, nil
}

func (s *certificateService) visibleCertificate(ctx context.Context, id uint, actor Actor) (models.LeavingCertificate, error) {
	certificate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.LeavingCertificate{}, err
	}
	if !policy.CanView(actor.Role, certificate.Status) {
		return models.LeavingCertificate{}, notFoundFor(s.repo.Table())
	}
	return certificate, nil
}

func (s *certificateService) cacheKey(id uint) string {
	return fmt.Sprintf("certificate:%d", id)
}

func (s *certificateService) cachedResponse(ctx context.Context, id uint) (dto.CertificateResponse, bool) {
	if s.cache == nil {
		return dto.CertificateResponse{}, false
	}

	raw, err := s.cache.Get(ctx, s.cacheKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read certificate cache")
		}
		return dto.CertificateResponse{}, false
	}

	var response dto.CertificateResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return dto.CertificateResponse{}, false
	}

	s.logger.Debug().Uint("certificate_id", id).Msg("certificate cache hit")
	return response, true
}

func (s *certificateService) storeCache(ctx context.Context, id uint, response dto.CertificateResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(id), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store certificate cache")
	}
}

func (s *certificateService) dropCache(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(id)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate certificate cache")
	}
}

func certificateUpdates(req dto.CertificateUpdateRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if req.SerialNo != nil {
		updates["serial_no"] = *req.SerialNo
	}
	if req.PreviousSchool != nil {
		updates["previous_school"] = strings.TrimSpace(*req.PreviousSchool)
	}
	if req.PreviousClass != nil {
		updates["previous_class"] = strings.TrimSpace(*req.PreviousClass)
	}
	if req.AdmissionDate != nil {
		parsed, err := parseDate(*req.AdmissionDate)
		if err != nil {
			return nil, err
		}
		updates["admission_date"] = parsed
	}
	if req.AdmissionClass != nil {
		updates["admission_class"] = strings.TrimSpace(*req.AdmissionClass)
	}
	if req.ProgressInStudies != nil {
		updates["progress_in_studies"] = strings.TrimSpace(*req.ProgressInStudies)
	}
	if req.Conduct != nil {
		updates["conduct"] = strings.TrimSpace(*req.Conduct)
	}
	if req.LeavingDate != nil {
		parsed, err := parseDate(*req.LeavingDate)
		if err != nil {
			return nil, err
		}
		updates["leaving_date"] = parsed
	}
	if req.LeavingClass != nil {
		updates["leaving_class"] = strings.TrimSpace(*req.LeavingClass)
	}
	if req.StudyingClassAndSince != nil {
		updates["studying_class_and_since"] = strings.TrimSpace(*req.StudyingClassAndSince)
	}
	if req.ReasonForLeaving != nil {
		updates["reason_for_leaving"] = strings.TrimSpace(*req.ReasonForLeaving)
	}
	if req.Remarks != nil {
		updates["remarks"] = strings.TrimSpace(*req.Remarks)
	}
	if req.GeneralRegisterRef != nil {
		updates["general_register_ref"] = strings.TrimSpace(*req.GeneralRegisterRef)
	}
	if req.CertificateDate != nil {
		parsed, err := parseDate(*req.CertificateDate)
		if err != nil {
			return nil, err
		}
		updates["certificate_date"] = parsed
	}
	if req.ClassTeacherName != nil {
		updates["class_teacher_name"] = strings.TrimSpace(*req.ClassTeacherName)
	}
	if req.ClerkName != nil {
		updates["clerk_name"] = strings.TrimSpace(*req.ClerkName)
	}
	if req.HeadmasterName != nil {
		updates["headmaster_name"] = strings.TrimSpace(*req.HeadmasterName)
	}

	return updates, nil
}
