package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/models"
	"github.com/vidyadoc/slc-api/internal/policy"
	"github.com/vidyadoc/slc-api/internal/repository"
	"github.com/vidyadoc/slc-api/internal/status"
)

// SchoolService orchestrates school record use cases.
type SchoolService interface {
	Create(ctx context.Context, req dto.SchoolCreateRequest, actor Actor, origin Origin) (dto.SchoolResponse, error)
	Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.SchoolResponse, error)
	List(ctx context.Context, req dto.SchoolListRequest, actor Actor) (dto.SchoolListResponse, error)
	Update(ctx context.Context, id uint, req dto.SchoolUpdateRequest, actor Actor, origin Origin) (dto.SchoolResponse, error)
	Delete(ctx context.Context, id uint, actor Actor, origin Origin) error
	Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.SchoolResponse, error)
	Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error)
	History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error)
}

type schoolService struct {
	repo      repository.SchoolRepository
	workflow  WorkflowService
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSchoolService constructs the school service.
func NewSchoolService(repo repository.SchoolRepository, workflow WorkflowService, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) SchoolService {
	return &schoolService{
		repo:      repo,
		workflow:  workflow,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "school_service").Logger(),
	}
}

func (s *schoolService) Create(ctx context.Context, req dto.SchoolCreateRequest, actor Actor, origin Origin) (dto.SchoolResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, validationError(err)
	}
	if err := policy.Authorize(actor.Role, policy.ActionCreate, status.Draft); err != nil {
		return dto.SchoolResponse{}, err
	}

	school := models.School{
		Name:                strings.TrimSpace(req.Name),
		Address:             strings.TrimSpace(req.Address),
		Taluka:              strings.TrimSpace(req.Taluka),
		District:            strings.TrimSpace(req.District),
		State:               strings.TrimSpace(req.State),
		PhoneNo:             strings.TrimSpace(req.PhoneNo),
		Email:               strings.TrimSpace(req.Email),
		GeneralRegisterNo:   strings.TrimSpace(req.GeneralRegisterNo),
		SchoolRecognitionNo: strPtr(req.SchoolRecognitionNo),
		UDISENo:             strPtr(req.UDISENo),
		AffiliationNo:       strings.TrimSpace(req.AffiliationNo),
		Board:               strings.TrimSpace(req.Board),
		Medium:              strings.TrimSpace(req.Medium),
		Status:              status.Draft,
		CreatedBy:           actorID(actor),
	}

	if err := s.repo.Create(ctx, &school); err != nil {
		return dto.SchoolResponse{}, err
	}

	s.audit.RecordInsert(s.repo.Table(), school.ID, school.Snapshot(), actor, origin)
	s.logger.Info().Uint("school_id", school.ID).Uint("actor_id", actor.ID).Msg("school created")

	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.SchoolResponse, error) {
	school, err := s.visibleSchool(ctx, id, actor)
	if err != nil {
		return dto.SchoolResponse{}, err
	}

	s.audit.RecordView(s.repo.Table(), id, actor, origin)

	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) List(ctx context.Context, req dto.SchoolListRequest, actor Actor) (dto.SchoolListResponse, error) {
	filter := repository.SchoolFilter{
		Search:    strings.TrimSpace(req.Search),
		District:  strings.TrimSpace(req.District),
		Board:     strings.TrimSpace(req.Board),
		Status:    status.Status(strings.TrimSpace(req.Status)),
		Role:      actor.Role,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	schools, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.SchoolListResponse{}, err
	}

	items := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		items = append(items, dto.NewSchoolResponse(school))
	}

	return dto.SchoolListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *schoolService) Update(ctx context.Context, id uint, req dto.SchoolUpdateRequest, actor Actor, origin Origin) (dto.SchoolResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, validationError(err)
	}

	current, err := s.visibleSchool(ctx, id, actor)
	if err != nil {
		return dto.SchoolResponse{}, err
	}
	if err := policy.Authorize(actor.Role, policy.ActionEdit, current.Status); err != nil {
		return dto.SchoolResponse{}, err
	}

	updates := schoolUpdates(req)
	if len(updates) == 0 {
		return dto.NewSchoolResponse(current), nil
	}
	updates["updated_by"] = actor.ID

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.SchoolResponse{}, err
	}

	s.audit.RecordUpdate(s.repo.Table(), id, current.Snapshot(), updated.Snapshot(), actor, origin)

	return dto.NewSchoolResponse(updated), nil
}

func (s *schoolService) Delete(ctx context.Context, id uint, actor Actor, origin Origin) error {
	_, err := s.workflow.Delete(ctx, s.repo, id, actor, origin)
	return err
}

func (s *schoolService) Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.SchoolResponse, error) {
	if _, err := s.workflow.Transition(ctx, s.repo, id, params, actor, origin); err != nil {
		return dto.SchoolResponse{}, err
	}

	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.SchoolResponse{}, err
	}
	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error) {
	return s.workflow.Transitions(ctx, s.repo, id, actor)
}

func (s *schoolService) History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error) {
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

func (s *schoolService) visibleSchool(ctx context.Context, id uint, actor Actor) (models.School, error) {
	school, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.School{}, err
	}
	if !policy.CanView(actor.Role, school.Status) {
		return models.School{}, notFoundFor(s.repo.Table())
	}
	return school, nil
}

func schoolUpdates(req dto.SchoolUpdateRequest) map[string]interface{} {
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Taluka != nil {
		updates["taluka"] = strings.TrimSpace(*req.Taluka)
	}
	if req.District != nil {
		updates["district"] = strings.TrimSpace(*req.District)
	}
	if req.State != nil {
		updates["state"] = strings.TrimSpace(*req.State)
	}
	if req.PhoneNo != nil {
		updates["phone_no"] = strings.TrimSpace(*req.PhoneNo)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.GeneralRegisterNo != nil {
		updates["general_register_no"] = strings.TrimSpace(*req.GeneralRegisterNo)
	}
	if req.SchoolRecognitionNo != nil {
		updates["school_recognition_no"] = *req.SchoolRecognitionNo
	}
	if req.UDISENo != nil {
		updates["udise_no"] = *req.UDISENo
	}
	if req.AffiliationNo != nil {
		updates["affiliation_no"] = strings.TrimSpace(*req.AffiliationNo)
	}
	if req.Board != nil {
		updates["board"] = strings.TrimSpace(*req.Board)
	}
	if req.Medium != nil {
		updates["medium"] = strings.TrimSpace(*req.Medium)
	}

	return updates
}
