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

// StudentService orchestrates student record use cases: validation,
// authorization, persistence and audit, in that order.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest, actor Actor, origin Origin) (dto.StudentResponse, error)
	Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.StudentResponse, error)
	List(ctx context.Context, req dto.StudentListRequest, actor Actor) (dto.StudentListResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest, actor Actor, origin Origin) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint, actor Actor, origin Origin) error
	Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.StudentResponse, error)
	Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error)
	History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error)
}

type studentService struct {
	repo      repository.StudentRepository
	workflow  WorkflowService
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, workflow WorkflowService, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		workflow:  workflow,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest, actor Actor, origin Origin) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, validationError(err)
	}
	if err := policy.Authorize(actor.Role, policy.ActionCreate, status.Draft); err != nil {
		return dto.StudentResponse{}, err
	}

	dateOfBirth, err := parseDate(req.DateOfBirth)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		StudentID:          strPtr(req.StudentID),
		UIDAadharNo:        strPtr(req.UIDAadharNo),
		FullName:           strings.TrimSpace(req.FullName),
		FatherName:         strings.TrimSpace(req.FatherName),
		MotherName:         strings.TrimSpace(req.MotherName),
		Surname:            strings.TrimSpace(req.Surname),
		Nationality:        strings.TrimSpace(req.Nationality),
		MotherTongue:       strings.TrimSpace(req.MotherTongue),
		Religion:           strings.TrimSpace(req.Religion),
		Caste:              strings.TrimSpace(req.Caste),
		SubCaste:           strings.TrimSpace(req.SubCaste),
		BirthPlaceVillage:  strings.TrimSpace(req.BirthPlaceVillage),
		BirthPlaceTaluka:   strings.TrimSpace(req.BirthPlaceTaluka),
		BirthPlaceDistrict: strings.TrimSpace(req.BirthPlaceDistrict),
		BirthPlaceState:    strings.TrimSpace(req.BirthPlaceState),
		BirthPlaceCountry:  strings.TrimSpace(req.BirthPlaceCountry),
		DateOfBirth:        dateOfBirth,
		DateOfBirthWords:   strings.TrimSpace(req.DateOfBirthWords),
		Status:             status.Draft,
		CreatedBy:          actorID(actor),
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.audit.RecordInsert(s.repo.Table(), student.ID, student.Snapshot(), actor, origin)
	s.logger.Info().Uint("student_id", student.ID).Uint("actor_id", actor.ID).Msg("student created")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, id uint, actor Actor, origin Origin) (dto.StudentResponse, error) {
	student, err := s.visibleStudent(ctx, id, actor)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.audit.RecordView(s.repo.Table(), id, actor, origin)

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest, actor Actor) (dto.StudentListResponse, error) {
	filter := repository.StudentFilter{
		Search:    strings.TrimSpace(req.Search),
		Status:    status.Status(strings.TrimSpace(req.Status)),
		District:  strings.TrimSpace(req.District),
		Role:      actor.Role,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	return dto.StudentListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest, actor Actor, origin Origin) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, validationError(err)
	}

	current, err := s.visibleStudent(ctx, id, actor)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if err := policy.Authorize(actor.Role, policy.ActionEdit, current.Status); err != nil {
		return dto.StudentResponse{}, err
	}

	updates, err := studentUpdates(req)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	if len(updates) == 0 {
		return dto.NewStudentResponse(current), nil
	}
	updates["updated_by"] = actor.ID

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.audit.RecordUpdate(s.repo.Table(), id, current.Snapshot(), updated.Snapshot(), actor, origin)

	return dto.NewStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, id uint, actor Actor, origin Origin) error {
	_, err := s.workflow.Delete(ctx, s.repo, id, actor, origin)
	return err
}

func (s *studentService) Transition(ctx context.Context, id uint, params TransitionParams, actor Actor, origin Origin) (dto.StudentResponse, error) {
	if _, err := s.workflow.Transition(ctx, s.repo, id, params, actor, origin); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Transitions(ctx context.Context, id uint, actor Actor) (dto.StatusTransitionsResponse, error) {
	return s.workflow.Transitions(ctx, s.repo, id, actor)
}

func (s *studentService) History(ctx context.Context, id uint, actor Actor) ([]dto.StatusHistoryResponse, error) {
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

func (s *studentService) visibleStudent(ctx context.Context, id uint, actor Actor) (models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Student{}, err
	}
	if !policy.CanView(actor.Role, student.Status) {
		return models.Student{}, notFoundFor(s.repo.Table())
	}
	return student, nil
}

// studentUpdates maps the set pointer fields onto column updates. Identifier
// columns pass through untrimmed: the repository owns their normalization and
// uniqueness rules.
func studentUpdates(req dto.StudentUpdateRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if req.StudentID != nil {
		updates["student_id"] = *req.StudentID
	}
	if req.UIDAadharNo != nil {
		updates["uid_aadhar_no"] = *req.UIDAadharNo
	}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.FatherName != nil {
		updates["father_name"] = strings.TrimSpace(*req.FatherName)
	}
	if req.MotherName != nil {
		updates["mother_name"] = strings.TrimSpace(*req.MotherName)
	}
	if req.Surname != nil {
		updates["surname"] = strings.TrimSpace(*req.Surname)
	}
	if req.Nationality != nil {
		updates["nationality"] = strings.TrimSpace(*req.Nationality)
	}
	if req.MotherTongue != nil {
		updates["mother_tongue"] = strings.TrimSpace(*req.MotherTongue)
	}
	if req.Religion != nil {
		updates["religion"] = strings.TrimSpace(*req.Religion)
	}
	if req.Caste != nil {
		updates["caste"] = strings.TrimSpace(*req.Caste)
	}
	if req.SubCaste != nil {
		updates["sub_caste"] = strings.TrimSpace(*req.SubCaste)
	}
	if req.BirthPlaceVillage != nil {
		updates["birth_place_village"] = strings.TrimSpace(*req.BirthPlaceVillage)
	}
	if req.BirthPlaceTaluka != nil {
		updates["birth_place_taluka"] = strings.TrimSpace(*req.BirthPlaceTaluka)
	}
	if req.BirthPlaceDistrict != nil {
		updates["birth_place_district"] = strings.TrimSpace(*req.BirthPlaceDistrict)
	}
	if req.BirthPlaceState != nil {
		updates["birth_place_state"] = strings.TrimSpace(*req.BirthPlaceState)
	}
	if req.BirthPlaceCountry != nil {
		updates["birth_place_country"] = strings.TrimSpace(*req.BirthPlaceCountry)
	}
	if req.DateOfBirth != nil {
		parsed, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		updates["date_of_birth"] = parsed
	}
	if req.DateOfBirthWords != nil {
		updates["date_of_birth_words"] = strings.TrimSpace(*req.DateOfBirthWords)
	}

	return updates, nil
}
