package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blaisecz/sleep-ai/internal/api/middleware"
	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/blaisecz/sleep-ai/internal/logger"
	"github.com/blaisecz/sleep-ai/pkg/problem"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const validSessionBody = `{"duration": 7.5, "awakenings": 1, "stress": 3, "caffeine": 100, "screenTime": 60, "exercise": 30, "mood": 7}`

// authed attaches an authenticated user to the request as RequireAuth would.
func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestSleepLogHandler_Add(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		body           string
		anonymous      bool
		mockService    *MockSleepLogService
		wantStatusCode int
		wantFields     []string
	}{
		{
			name:           "valid session",
			body:           validSessionBody,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "zero values are valid",
			body:           `{"duration": 0, "awakenings": 0, "stress": 1, "caffeine": 0, "screenTime": 0, "exercise": 0, "mood": 1}`,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "no token",
			body:           validSessionBody,
			anonymous:      true,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid JSON",
			body:           `{invalid}`,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing fields",
			body:           `{"duration": 7.5}`,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantFields:     []string{"awakenings", "stress", "caffeine", "screenTime", "exercise", "mood"},
		},
		{
			name:           "out of range",
			body:           `{"duration": 25, "awakenings": 1, "stress": 0, "caffeine": 100, "screenTime": 181, "exercise": 30, "mood": 7}`,
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantFields:     []string{"duration", "stress", "screenTime"},
		},
		{
			name: "persistence failure",
			body: validSessionBody,
			mockService: &MockSleepLogService{
				submitFunc: func(ctx context.Context, uid uuid.UUID, f domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error) {
					return nil, fmt.Errorf("%w: connection refused", domain.ErrPersistence)
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSleepLogHandler(tt.mockService, logger.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/sleep/add", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.anonymous {
				req = authed(req, userID)
			}
			rec := httptest.NewRecorder()

			handler.Add(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("Add() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if len(tt.wantFields) > 0 {
				var p problem.Problem
				if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
					t.Fatalf("failed to decode problem: %v", err)
				}
				got := map[string]bool{}
				for _, fe := range p.Errors {
					got[fe.Field] = true
				}
				for _, f := range tt.wantFields {
					if !got[f] {
						t.Errorf("expected field error for %q, got %+v", f, p.Errors)
					}
				}
				if len(p.Errors) != len(tt.wantFields) {
					t.Errorf("got %d field errors, want %d: %+v", len(p.Errors), len(tt.wantFields), p.Errors)
				}
			}
		})
	}
}

func TestSleepLogHandler_Add_PassesFeaturesAndDate(t *testing.T) {
	userID := uuid.New()
	var gotUser uuid.UUID
	var gotFeatures domain.SleepSessionFeatures
	var gotDate *time.Time

	mock := &MockSleepLogService{
		submitFunc: func(ctx context.Context, uid uuid.UUID, f domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error) {
			gotUser, gotFeatures, gotDate = uid, f, date
			return &domain.SleepLog{
				ID:         uuid.New(),
				UserID:     uid,
				Date:       *date,
				Features:   f,
				Prediction: domain.PredictionResult{SleepScore: 100, Model: domain.ModelFallbackFormula, Features: &f},
			}, nil
		},
	}

	body := `{"duration": 7.5, "awakenings": 1, "stress": 3, "caffeine": 100, "screenTime": 60, "exercise": 30, "mood": 7, "date": "2025-12-18T07:00:00Z"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/sleep/add", bytes.NewBufferString(body)), userID)
	rec := httptest.NewRecorder()

	NewSleepLogHandler(mock, logger.NewNop()).Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if gotUser != userID {
		t.Errorf("user = %v, want %v", gotUser, userID)
	}
	want := domain.SleepSessionFeatures{Duration: 7.5, Awakenings: 1, Stress: 3, Caffeine: 100, ScreenTime: 60, Exercise: 30, Mood: 7}
	if gotFeatures != want {
		t.Errorf("features = %+v, want %+v", gotFeatures, want)
	}
	if gotDate == nil || !gotDate.Equal(time.Date(2025, 12, 18, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", gotDate)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	prediction, _ := resp["prediction"].(map[string]any)
	if prediction["model"] != domain.ModelFallbackFormula || prediction["sleepScore"] != float64(100) {
		t.Errorf("unexpected prediction %v", prediction)
	}
	if resp["screenTime"] != float64(60) {
		t.Errorf("features should be flattened into the response, got %v", resp)
	}
}

func TestSleepLogHandler_List(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		queryParams    string
		mockService    *MockSleepLogService
		wantStatusCode int
		wantFilter     *domain.SleepLogFilter
	}{
		{
			name:           "defaults",
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusOK,
			wantFilter:     &domain.SleepLogFilter{},
		},
		{
			name:           "limit and cursor",
			queryParams:    "?limit=10&cursor=abc",
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusOK,
			wantFilter:     &domain.SleepLogFilter{Limit: 10, Cursor: "abc"},
		},
		{
			name:           "invalid limit",
			queryParams:    "?limit=abc",
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "negative limit",
			queryParams:    "?limit=-1",
			mockService:    &MockSleepLogService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:        "invalid cursor",
			queryParams: "?cursor=garbage",
			mockService: &MockSleepLogService{
				listFunc: func(ctx context.Context, uid uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
					return nil, fmt.Errorf("%w: bad cursor", domain.ErrInvalidInput)
				},
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "storage error",
			mockService: &MockSleepLogService{
				listFunc: func(ctx context.Context, uid uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
					return nil, errors.New("db down")
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter *domain.SleepLogFilter
			if tt.mockService.listFunc == nil {
				tt.mockService.listFunc = func(ctx context.Context, uid uuid.UUID, filter domain.SleepLogFilter) (*domain.SleepLogListResponse, error) {
					gotFilter = &filter
					return &domain.SleepLogListResponse{Data: []domain.SleepLogResponse{}}, nil
				}
			}
			handler := NewSleepLogHandler(tt.mockService, logger.NewNop())

			req := authed(httptest.NewRequest(http.MethodGet, "/api/sleep/logs"+tt.queryParams, nil), userID)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("List() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
			if tt.wantFilter != nil && (gotFilter == nil || *gotFilter != *tt.wantFilter) {
				t.Errorf("filter = %+v, want %+v", gotFilter, tt.wantFilter)
			}
		})
	}
}

func TestSleepLogHandler_Get(t *testing.T) {
	userID := uuid.New()
	logID := uuid.New()
	found := &MockSleepLogService{
		getFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.SleepLog, error) {
			if uid != userID || id != logID {
				return nil, domain.ErrNotFound
			}
			return &domain.SleepLog{ID: id, UserID: uid, Prediction: domain.PredictionResult{SleepScore: 80}}, nil
		},
	}
	failing := &MockSleepLogService{
		getFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.SleepLog, error) {
			return nil, errors.New("db down")
		},
	}

	tests := []struct {
		name           string
		logID          string
		mockService    *MockSleepLogService
		wantStatusCode int
	}{
		{"found", logID.String(), found, http.StatusOK},
		{"not found", uuid.NewString(), found, http.StatusNotFound},
		{"invalid log ID", "not-a-uuid", found, http.StatusBadRequest},
		{"storage error", logID.String(), failing, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSleepLogHandler(tt.mockService, logger.NewNop())
			req := authed(httptest.NewRequest(http.MethodGet, "/api/sleep/logs/"+tt.logID, nil), userID)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("logId", tt.logID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			handler.Get(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Fatalf("Get() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
			if tt.wantStatusCode == http.StatusOK {
				var resp domain.SleepLogResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatal(err)
				}
				if resp.ID != logID {
					t.Errorf("id = %v, want %v", resp.ID, logID)
				}
			}
		})
	}
}

func TestSleepLogHandler_Add_BodyTooLarge(t *testing.T) {
	called := false
	mock := &MockSleepLogService{
		submitFunc: func(ctx context.Context, uid uuid.UUID, features domain.SleepSessionFeatures, date *time.Time) (*domain.SleepLog, error) {
			called = true
			return nil, errors.New("unexpected call")
		},
	}
	handler := NewSleepLogHandler(mock, logger.NewNop())

	body := `{"duration": 7.5, "note": "` + strings.Repeat("z", maxBodyBytes) + `"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/sleep/add", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Add() status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	var p problem.Problem
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Status != http.StatusRequestEntityTooLarge {
		t.Errorf("problem status = %d", p.Status)
	}
	if called {
		t.Error("service must not be called for an oversized body")
	}
}
