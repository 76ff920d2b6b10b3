package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/apperrors"
	"github.com/vidyadoc/slc-api/internal/dto"
	"github.com/vidyadoc/slc-api/internal/handler"
	"github.com/vidyadoc/slc-api/internal/service"
)

type mockStudentService struct {
	lastActor   service.Actor
	lastOrigin  service.Origin
	lastList    dto.StudentListRequest
	lastParams  service.TransitionParams
	response    dto.StudentResponse
	list        dto.StudentListResponse
	transitions dto.StatusTransitionsResponse
	history     []dto.StatusHistoryResponse
	err         error
}

func (m *mockStudentService) Create(_ context.Context, _ dto.StudentCreateRequest, actor service.Actor, origin service.Origin) (dto.StudentResponse, error) {
	m.lastActor, m.lastOrigin = actor, origin
	return m.response, m.err
}

func (m *mockStudentService) Get(_ context.Context, _ uint, actor service.Actor, origin service.Origin) (dto.StudentResponse, error) {
	m.lastActor, m.lastOrigin = actor, origin
	return m.response, m.err
}

func (m *mockStudentService) List(_ context.Context, req dto.StudentListRequest, actor service.Actor) (dto.StudentListResponse, error) {
	m.lastList, m.lastActor = req, actor
	return m.list, m.err
}

func (m *mockStudentService) Update(_ context.Context, _ uint, _ dto.StudentUpdateRequest, actor service.Actor, origin service.Origin) (dto.StudentResponse, error) {
	m.lastActor, m.lastOrigin = actor, origin
	return m.response, m.err
}

func (m *mockStudentService) Delete(_ context.Context, _ uint, actor service.Actor, origin service.Origin) error {
	m.lastActor, m.lastOrigin = actor, origin
	return m.err
}

func (m *mockStudentService) Transition(_ context.Context, _ uint, params service.TransitionParams, actor service.Actor, origin service.Origin) (dto.StudentResponse, error) {
	m.lastParams, m.lastActor, m.lastOrigin = params, actor, origin
	return m.response, m.err
}

func (m *mockStudentService) Transitions(_ context.Context, _ uint, actor service.Actor) (dto.StatusTransitionsResponse, error) {
	m.lastActor = actor
	return m.transitions, m.err
}

func (m *mockStudentService) History(_ context.Context, _ uint, actor service.Actor) ([]dto.StatusHistoryResponse, error) {
	m.lastActor = actor
	return m.history, m.err
}

func newStudentApp(svc service.StudentService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/students", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	handler.NewStudentHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestStudentHandler_GetResolvesActorAndOrigin(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 3, FullName: "Anita Desai", Status: "draft"}}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.StudentResponse `json:"data"`
	}
	decodeBody(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "Anita Desai", response.Data.FullName)

	require.Equal(t, uint(7), svc.lastActor.ID)
	require.Equal(t, "admin", svc.lastActor.Role)
	require.NotEmpty(t, svc.lastOrigin.IPAddress)
}

func TestStudentHandler_GetInvalidID(t *testing.T) {
	svc := &mockStudentService{}
	app := newStudentApp(svc)

	for _, path := range []string{"/api/v1/students/0", "/api/v1/students/abc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestStudentHandler_CreateReturnsCreated(t *testing.T) {
	svc := &mockStudentService{response: dto.StudentResponse{ID: 1, FullName: "Anita Desai", Status: "draft"}}
	app := newStudentApp(svc)

	body, err := json.Marshal(dto.StudentCreateRequest{FullName: "Anita Desai"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestStudentHandler_ListPassesFilters(t *testing.T) {
	svc := &mockStudentService{list: dto.StudentListResponse{}}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?page=2&page_size=5&search=desai&district=Pune&status=accepted", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 2, svc.lastList.Page)
	require.Equal(t, 5, svc.lastList.PageSize)
	require.Equal(t, "desai", svc.lastList.Search)
	require.Equal(t, "Pune", svc.lastList.District)
	require.Equal(t, "accepted", svc.lastList.Status)
}

func TestStudentHandler_UpdateStatusMapsErrorBody(t *testing.T) {
	svc := &mockStudentService{
		err: apperrors.InvalidTransition("draft", "issued", []string{"in_review", "cancelled"}),
	}
	app := newStudentApp(svc)

	body, err := json.Marshal(dto.StatusUpdateRequest{Status: "issued"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/students/4/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool `json:"success"`
		Error   struct {
			Kind    string   `json:"kind"`
			Allowed []string `json:"allowed_transitions"`
		} `json:"error"`
	}
	decodeBody(t, resp, &response)
	require.False(t, response.Success)
	require.Equal(t, "invalid_transition", response.Error.Kind)
	require.Equal(t, []string{"in_review", "cancelled"}, response.Error.Allowed)
	require.Equal(t, "issued", svc.lastParams.Status)
}

func TestStudentHandler_NotFoundHidesRecord(t *testing.T) {
	svc := &mockStudentService{err: apperrors.NotFound("student")}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/9", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandler_StatusHistory(t *testing.T) {
	svc := &mockStudentService{history: []dto.StatusHistoryResponse{
		{ID: 1, OldStatus: "draft", NewStatus: "in_review"},
		{ID: 2, OldStatus: "in_review", NewStatus: "accepted"},
	}}
	app := newStudentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/4/status-history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.StatusHistoryResponse `json:"data"`
	}
	decodeBody(t, resp, &response)
	require.Len(t, response.Data, 2)
	require.Equal(t, "accepted", response.Data[1].NewStatus)
}
