package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/api/http/handlers"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/config"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
	"github.com/estatehub/estate-service/internal/observability"
	"github.com/estatehub/estate-service/internal/repository"
	"github.com/estatehub/estate-service/internal/service"
)

const (
	testLandlordID = "0b6c2f0e-6a53-4c1e-9a77-2d9f1f1d0a01"
	adminID        = "0b6c2f0e-6a53-4c1e-9a77-2d9f1f1d0a02"
	agentUserID    = "0b6c2f0e-6a53-4c1e-9a77-2d9f1f1d0a03"
)

type memLandlords struct {
	mu   sync.Mutex
	rows map[string]domain.Landlord
}

func (m *memLandlords) Create(_ context.Context, l *domain.Landlord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = "0b6c2f0e-6a53-4c1e-9a77-2d9f1f1d0aff"
	l.Version = 1
	m.rows[l.ID] = *l
	return nil
}

func (m *memLandlords) Update(_ context.Context, l *domain.Landlord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[l.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != l.Version {
		return repository.ErrVersionConflict
	}
	l.Version++
	m.rows[l.ID] = *l
	return nil
}

func (m *memLandlords) MarkNotified(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.rows[id]
	stored.IsSentEmail, stored.IsSentAt = true, &at
	m.rows[id] = stored
	return nil
}

func (m *memLandlords) GetByID(_ context.Context, id string) (*domain.Landlord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (m *memLandlords) GetByEmail(_ context.Context, email string) (*domain.Landlord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.rows {
		if strings.EqualFold(stored.Email, email) {
			return &stored, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memLandlords) List(context.Context, repository.LandlordFilter) ([]domain.Landlord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Landlord
	for _, stored := range m.rows {
		out = append(out, stored)
	}
	return out, len(out), nil
}

func (m *memLandlords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memLandlords) Summary(context.Context) (repository.LandlordSummary, error) {
	return repository.LandlordSummary{}, nil
}

type memProperties struct {
	byLandlord map[string]int
}

func (m *memProperties) Create(context.Context, *domain.Property) error { return nil }
func (m *memProperties) Update(context.Context, *domain.Property) error { return nil }
func (m *memProperties) Delete(context.Context, string) error           { return nil }

func (m *memProperties) GetByID(context.Context, string) (*domain.Property, error) {
	return nil, pgx.ErrNoRows
}

func (m *memProperties) List(context.Context, repository.PropertyFilter) ([]domain.Property, int, error) {
	return nil, 0, nil
}

func (m *memProperties) CountByLandlord(_ context.Context, landlordID string) (int, error) {
	return m.byLandlord[landlordID], nil
}

func (m *memProperties) CountByStatus(context.Context) (map[domain.PropertyStatus]int, error) {
	return map[domain.PropertyStatus]int{}, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]domain.User
}

func (m *memUsers) Create(context.Context, *domain.User) error { return nil }
func (m *memUsers) Update(context.Context, *domain.User) error { return nil }
func (m *memUsers) Delete(context.Context, string) error       { return nil }

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (m *memUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *memUsers) List(context.Context, repository.UserFilter) ([]domain.User, int, error) {
	return nil, 0, nil
}

func (m *memUsers) SetPresence(_ context.Context, userID string, online bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[userID]
	if ok {
		stored.IsOnline, stored.LastSeen = online, &at
		m.rows[userID] = stored
	}
	return nil
}

func (m *memUsers) MarkStaleOffline(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *memUsers) CountOnline(context.Context) (int, error)                  { return 0, nil }

type memActivities struct {
	mu   sync.Mutex
	rows []domain.UserActivity
}

func (m *memActivities) Create(_ context.Context, a *domain.UserActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memActivities) List(context.Context, repository.ActivityFilter) ([]domain.UserActivity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserActivity(nil), m.rows...), len(m.rows), nil
}

func (m *memActivities) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

func (m *memActivities) all() []domain.UserActivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserActivity(nil), m.rows...)
}

type outbox struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app        *fiber.App
	tokens     *auth.TokenManager
	landlords  *memLandlords
	properties *memProperties
	activities *memActivities
	outbox     *outbox
	metrics    *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		landlords: &memLandlords{rows: map[string]domain.Landlord{
			testLandlordID: {ID: testLandlordID, Name: "Dana", Email: "dana@example.com", Status: domain.LandlordStatusActive, Version: 1},
		}},
		properties: &memProperties{byLandlord: map[string]int{}},
		activities: &memActivities{},
		outbox:     &outbox{},
		metrics:    observability.NewMetrics(),
	}
	users := &memUsers{rows: map[string]domain.User{
		adminID:     {ID: adminID, Email: "admin@example.com", Role: domain.UserRoleAdmin, Status: domain.UserStatusActive},
		agentUserID: {ID: agentUserID, Email: "agent@example.com", Role: domain.UserRoleFieldAgent, Status: domain.UserStatusActive},
	}}

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 10}}
	activity := service.NewActivityService(service.ActivityDependencies{
		ActivityRepo: s.activities,
		PresenceRepo: users,
	})
	landlordService := service.NewLandlordService(service.LandlordDependencies{
		LandlordRepo: s.landlords,
		PropertyRepo: s.properties,
		UserRepo:     users,
		Notifier:     notify.NewTemplateNotifier(s.outbox, "noreply@example.com", "http://dash"),
		Recorder:     s.metrics,
	})
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:     users,
		LandlordRepo: s.landlords,
		Activity:     activity,
	})
	propertyService := service.NewPropertyService(service.PropertyDependencies{
		PropertyRepo: s.properties,
		LandlordRepo: s.landlords,
	})
	s.tokens = authService.TokenManager()

	s.app = fiber.New()
	RegisterMiddlewares(s.app, zap.NewNop(), s.metrics, time.Second)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("estate-service", "test", okPinger{}, nil),
		Metrics:        handlers.NewMetricsHandler(s.metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Landlords:      handlers.NewLandlordsHandler(landlordService),
		Properties:     handlers.NewPropertiesHandler(propertyService),
		Users:          handlers.NewUsersHandler(service.NewUserService(cfg, service.UserDependencies{UserRepo: users})),
		FieldAgents:    handlers.NewFieldAgentsHandler(nil),
		Activities:     handlers.NewActivitiesHandler(activity),
		Reports:        handlers.NewReportsHandler(nil),
		Public:         handlers.NewPublicHandler(landlordService),
		AuthMiddleware: auth.NewAuthMiddleware(s.tokens, users),
		Activity:       activity,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		token, err := s.tokens.Issue(&domain.User{ID: userID})
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.Token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestVerifyEndpoint_ApprovesAndRecordsActivity(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPatch, "/api/landlords/"+testLandlordID+"/verify", adminID,
		`{"isVerified":true,"password":"Temp#123"}`)
	require.Equal(t, nethttp.StatusOK, status, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["isVerified"])
	assert.Equal(t, "ACTIVE", data["status"])
	assert.Equal(t, true, data["isSentEmail"])
	assert.Equal(t, "Landlord verified successfully", body["message"])

	notes := body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "approval", notes[0].(map[string]any)["kind"])
	assert.Equal(t, true, notes[0].(map[string]any)["sent"])

	require.Len(t, s.outbox.msgs, 1)
	assert.Contains(t, s.outbox.msgs[0].Body, "Temp#123")

	recorded := s.activities.all()
	require.Len(t, recorded, 1)
	assert.Equal(t, domain.ActionVerify, recorded[0].Action)
	assert.Equal(t, adminID, recorded[0].UserID)
	assert.Equal(t, "landlords", recorded[0].Metadata["resource"])
	assert.Equal(t, testLandlordID, recorded[0].Metadata["resourceId"])
	assert.Equal(t, int64(1), s.metrics.NotificationCount("approval", true))
}

func TestVerifyEndpoint_NonBooleanIsValidationError(t *testing.T) {
	s := newTestServer(t)

	for _, payload := range []string{`{"isVerified":"yes"}`, `{}`, `{"isVerified":null}`} {
		status, body := s.do(t, nethttp.MethodPatch, "/api/landlords/"+testLandlordID+"/verify", adminID, payload)
		assert.Equal(t, nethttp.StatusBadRequest, status, payload)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), payload)
	}
	assert.Empty(t, s.outbox.msgs)
	assert.Empty(t, s.activities.all())
}

func TestVerifyEndpoint_UnknownLandlord(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPatch, "/api/landlords/0b6c2f0e-6a53-4c1e-9a77-2d9f1f1d0a99/verify", adminID,
		`{"isVerified":true}`)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, _ = s.do(t, nethttp.MethodPatch, "/api/landlords/not-a-uuid/verify", adminID, `{"isVerified":true}`)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestStatusEndpoint_DeactivateWithReason(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodPatch, "/api/landlords/"+testLandlordID+"/status", adminID,
		`{"status":"INACTIVE","inactiveReason":"unpaid fees"}`)
	require.Equal(t, nethttp.StatusOK, status, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "INACTIVE", data["status"])
	assert.Equal(t, "unpaid fees", data["inactiveReason"])
	assert.Equal(t, "Landlord deactivated successfully", body["message"])

	require.Len(t, s.outbox.msgs, 1)
	assert.Equal(t, notify.KindInactive, s.outbox.msgs[0].Kind)
	assert.Equal(t, domain.ActionStatusChange, s.activities.all()[0].Action)
}

func TestStatusEndpoint_NotificationFailureStillSucceeds(t *testing.T) {
	s := newTestServer(t)
	s.outbox.err = errors.New("relay down")

	status, body := s.do(t, nethttp.MethodPatch, "/api/landlords/"+testLandlordID+"/status", adminID,
		`{"status":"INACTIVE"}`)
	require.Equal(t, nethttp.StatusOK, status, body)

	notes := body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, false, notes[0].(map[string]any)["sent"])
	assert.Equal(t, false, body["data"].(map[string]any)["isSentEmail"])
}

func TestDeleteEndpoint_BlockedByProperties(t *testing.T) {
	s := newTestServer(t)
	s.properties.byLandlord[testLandlordID] = 2

	status, body := s.do(t, nethttp.MethodDelete, "/api/landlords/"+testLandlordID, adminID, "")
	assert.Equal(t, nethttp.StatusBadRequest, status)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "cannot delete landlord with existing properties", errObj["message"])

	s.properties.byLandlord[testLandlordID] = 0
	status, _ = s.do(t, nethttp.MethodDelete, "/api/landlords/"+testLandlordID, adminID, "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, domain.ActionDelete, s.activities.all()[0].Action)
}

func TestLandlordRoutes_RequireStaff(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/api/landlords", "", "")
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, _ = s.do(t, nethttp.MethodGet, "/api/landlords", agentUserID, "")
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body = s.do(t, nethttp.MethodGet, "/api/landlords", adminID, "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"].([]any), 1)
	assert.Empty(t, s.activities.all())
}

func TestUsersRoutes_AdminOnlyAndPublicRegistration(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, nethttp.MethodGet, "/api/users", agentUserID, "")
	assert.Equal(t, nethttp.StatusForbidden, status)

	status, body := s.do(t, nethttp.MethodPost, "/public/landlords/register", "",
		`{"name":"New Owner","email":"new.owner@example.com"}`)
	require.Equal(t, nethttp.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["isVerified"])
	assert.Equal(t, "ACTIVE", data["status"])
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
}

func TestActionFor(t *testing.T) {
	cases := []struct {
		method string
		route  string
		want   domain.ActivityAction
		ok     bool
	}{
		{fiber.MethodPatch, "/api/landlords/:id/verify", domain.ActionVerify, true},
		{fiber.MethodPatch, "/api/landlords/:id/status", domain.ActionStatusChange, true},
		{fiber.MethodPost, "/api/properties", domain.ActionCreate, true},
		{fiber.MethodPut, "/api/properties/:id", domain.ActionUpdate, true},
		{fiber.MethodDelete, "/api/field-agents/:id", domain.ActionDelete, true},
		{fiber.MethodGet, "/api/landlords", "", false},
	}
	for _, tc := range cases {
		got, ok := actionFor(tc.method, tc.route)
		assert.Equal(t, tc.ok, ok, tc.route)
		assert.Equal(t, tc.want, got, tc.route)
	}
	assert.Equal(t, "landlords", resourceName("/api/landlords/:id/verify"))
	assert.Equal(t, "users", resourceName("/api/users"))
}
