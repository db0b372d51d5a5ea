package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/http/middleware"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/messaging"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// MockLeadConverter
type MockLeadConverter struct {
	mock.Mock
}

func (m *MockLeadConverter) Execute(ctx context.Context, actor entity.Actor, input usecase.ConvertLeadInput) (*usecase.ConvertLeadOutput, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ConvertLeadOutput), args.Error(1)
}

// MockLeadReader
type MockLeadReader struct {
	mock.Mock
}

func (m *MockLeadReader) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Lead, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadReader) List(ctx context.Context, actor entity.Actor, input usecase.ListLeadsInput) ([]*entity.Lead, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockMatchSuggester
type MockMatchSuggester struct {
	mock.Mock
}

func (m *MockMatchSuggester) Execute(ctx context.Context, actor entity.Actor) (*usecase.SuggestOutput, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SuggestOutput), args.Error(1)
}

// MockMappingApplier
type MockMappingApplier struct {
	mock.Mock
}

func (m *MockMappingApplier) Execute(ctx context.Context, actor entity.Actor, input usecase.ApplyMappingsInput) (*usecase.ApplyMappingsOutput, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ApplyMappingsOutput), args.Error(1)
}

// MockLeadCapturer
type MockLeadCapturer struct {
	mock.Mock
}

func (m *MockLeadCapturer) Execute(ctx context.Context, platform messaging.Platform, body []byte) (*usecase.CaptureLeadsOutput, error) {
	args := m.Called(ctx, platform, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CaptureLeadsOutput), args.Error(1)
}

type testRouter struct {
	handler   http.Handler
	converter *MockLeadConverter
	reader    *MockLeadReader
	suggester *MockMatchSuggester
	applier   *MockMappingApplier
	capturer  *MockLeadCapturer
}

func newTestRouter() *testRouter {
	logger := zap.NewNop()
	tr := &testRouter{
		converter: new(MockLeadConverter),
		reader:    new(MockLeadReader),
		suggester: new(MockMatchSuggester),
		applier:   new(MockMappingApplier),
		capturer:  new(MockLeadCapturer),
	}
	tr.handler = NewRouter(RouterConfig{
		JWTSecret:   testSecret,
		CORSOrigins: []string{"http://localhost:5173"},
		Logger:      logger,
		Leads:       NewLeadHandler(nil, nil, tr.reader, tr.converter, logger),
		Catalog:     NewCatalogHandler(tr.suggester, tr.applier, logger),
		Products:    NewProductHandler(nil, logger),
		Webhooks:    NewWebhookHandler(tr.capturer, "hook-secret", logger),
	})
	return tr
}

func signToken(t *testing.T, userID, orgID, role string) string {
	t.Helper()
	claims := middleware.Claims{
		OrganizationID: orgID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func (tr *testRouter) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var member = entity.Actor{UserID: "user-1", OrganizationID: "org-1", Role: "member"}

func TestConvert_RequiresToken(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodPost, "/api/leads/convert", "", []byte(`{"lead_id":"lead-1"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	tr.converter.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvert_RejectsForgedToken(t *testing.T) {
	tr := newTestRouter()
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		OrganizationID:   "org-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("a-completely-different-secret-value"))
	require.NoError(t, err)

	rec := tr.do(t, http.MethodPost, "/api/leads/convert", forged, []byte(`{"lead_id":"lead-1"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConvert_Success(t *testing.T) {
	tr := newTestRouter()
	deal := &entity.Deal{ID: "deal-1", Title: "Acme - Ana"}
	tr.converter.On("Execute", mock.Anything, member, usecase.ConvertLeadInput{LeadID: "lead-1"}).
		Return(&usecase.ConvertLeadOutput{Success: true, Deal: deal, LeadID: "lead-1", Message: "Lead converted to deal successfully"}, nil)

	rec := tr.do(t, http.MethodPost, "/api/leads/convert", signToken(t, "user-1", "org-1", "member"), []byte(`{"lead_id":"lead-1"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "lead-1", body["lead_id"])
	assert.Equal(t, "deal-1", body["deal"].(map[string]any)["id"])
}

func TestConvert_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", &usecase.NotFoundError{Resource: "lead", ID: "lead-1"}, http.StatusNotFound, "lead not found: lead-1"},
		{"invalid state", &usecase.ValidationError{Code: usecase.CodeInvalidState, Message: "only qualified leads can be converted (current status: new)"}, http.StatusBadRequest, "only qualified leads can be converted (current status: new)"},
		{"persistence", &usecase.PersistenceError{Op: "create deal", Err: errors.New("pq: relation missing")}, http.StatusInternalServerError, "failed to create deal"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter()
			tr.converter.On("Execute", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := tr.do(t, http.MethodPost, "/api/leads/convert", signToken(t, "user-1", "org-1", "member"), []byte(`{"lead_id":"lead-1"}`))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeBody(t, rec)["error"])
		})
	}
}

func TestConvert_MalformedBody(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodPost, "/api/leads/convert", signToken(t, "user-1", "org-1", "member"), []byte(`{"lead_id":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.CodeInvalidJSON, decodeBody(t, rec)["code"])
}

func TestBulkLink_RequiresAdmin(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodGet, "/api/admin/stripe/bulk-link", signToken(t, "user-1", "org-1", "member"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	tr.suggester.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestBulkLink_SuggestForAdmin(t *testing.T) {
	tr := newTestRouter()
	admin := entity.Actor{UserID: "admin-1", OrganizationID: "org-1", Role: "admin"}
	tr.suggester.On("Execute", mock.Anything, admin).Return(&usecase.SuggestOutput{
		Suggestions: []usecase.ProductSuggestion{},
		Stats:       usecase.SuggestStats{TotalStripeProducts: 4},
	}, nil)

	rec := tr.do(t, http.MethodGet, "/api/admin/stripe/bulk-link", signToken(t, "admin-1", "org-1", "admin"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["stats"].(map[string]any)
	assert.Equal(t, 4.0, stats["totalStripeProducts"])
}

func TestBulkLink_ApplyValidationError(t *testing.T) {
	tr := newTestRouter()
	tr.applier.On("Execute", mock.Anything, mock.Anything, usecase.ApplyMappingsInput{Mappings: []usecase.Mapping{}}).
		Return(nil, &usecase.ValidationError{Code: usecase.CodeValidation, Field: "mappings", Message: "must be at least 1"})

	rec := tr.do(t, http.MethodPost, "/api/admin/stripe/bulk-link", signToken(t, "admin-1", "org-1", "owner"), []byte(`{"mappings":[]}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "mappings", body["field"])
	assert.Equal(t, usecase.CodeValidation, body["code"])
}

func TestBulkLink_ApplyRejectsUnknownFields(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodPost, "/api/admin/stripe/bulk-link", signToken(t, "admin-1", "org-1", "admin"), []byte(`{"mapping":[]}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	tr.applier.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestListLeads_QueryParams(t *testing.T) {
	tr := newTestRouter()
	tr.reader.On("List", mock.Anything, member, usecase.ListLeadsInput{Status: "qualified", MinScore: 70, Limit: 10}).
		Return([]*entity.Lead{{ID: "lead-1"}}, nil)

	rec := tr.do(t, http.MethodGet, "/api/leads/?status=qualified&min_score=70&limit=10", signToken(t, "user-1", "org-1", "member"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["count"])
}

func TestListLeads_BadInteger(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(t, http.MethodGet, "/api/leads/?limit=ten", signToken(t, "user-1", "org-1", "member"), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit", decodeBody(t, rec)["field"])
}

func TestWebhook_RejectsBadToken(t *testing.T) {
	tr := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/leads/form", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(WebhookTokenHeader, "nope")
	rec := httptest.NewRecorder()

	tr.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	tr.capturer.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_CapturesLeads(t *testing.T) {
	tr := newTestRouter()
	body := []byte(`{"name":"Ana"}`)
	tr.capturer.On("Execute", mock.Anything, messaging.PlatformForm, body).
		Return(&usecase.CaptureLeadsOutput{Created: []*usecase.LeadOutput{{Lead: &entity.Lead{ID: "lead-1"}}}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/leads/FORM", bytes.NewReader(body))
	req.Header.Set(WebhookTokenHeader, "hook-secret")
	rec := httptest.NewRecorder()

	tr.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody(t, rec)["created"].([]any)
	assert.Len(t, created, 1)
}

func TestWebhook_IgnoresTokenQueryParam(t *testing.T) {
	tr := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/leads/form?token=hook-secret", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	tr.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	tr.capturer.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientIP_IgnoresForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/leads/form", nil)
	req.RemoteAddr = "10.0.0.1:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.Equal(t, "10.0.0.1", clientIP(req))
}

func TestRateLimiter_TokenBucket(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))

	// one token refills per second at 60/min
	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_PrunesIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(5 * time.Minute)
	rl.Allow("10.0.0.2")
	rl.prune(time.Minute)

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
