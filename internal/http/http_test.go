package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/services/telemetry"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.Errorf(models.InvalidRange, "bad"), http.StatusBadRequest},
		{models.Errorf(models.InvalidDeltaMode, "bad"), http.StatusBadRequest},
		{models.Errorf(models.InvalidUser, "bad"), http.StatusBadRequest},
		{models.WrapError(models.SourceUnavailable, errors.New("io"), "load"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "client error keeps detail",
			err:         models.Errorf(models.InvalidRange, "unknown preset %q", "x"),
			wantStatus:  http.StatusBadRequest,
			wantError:   "InvalidRange",
			wantMessage: `InvalidRange: unknown preset "x"`,
		},
		{
			name:        "source error hides cause",
			err:         models.WrapError(models.SourceUnavailable, errors.New("/secret/path"), "failed to load accounts"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "SourceUnavailable",
			wantMessage: "failed to load accounts",
		},
		{
			name:        "plain error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Internal",
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(rec, logging.NewNop(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError || body.Message != tt.wantMessage {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestRangeRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard?preset=last-month&start=2025-01-01&end=2025-02-01", nil)
	req := RangeRequest(r)
	if req.Preset != "last-month" || req.Start != "2025-01-01" || req.End != "2025-02-01" {
		t.Errorf("RangeRequest = %+v", req)
	}
}

func TestRequestLogger(t *testing.T) {
	mc := telemetry.NewMemoryCollector()
	router := chi.NewRouter()
	router.Use(RequestLogger(logging.NewNop(), mc))
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusTeapot, map[string]string{"id": chi.URLParam(r, "id")})
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	}

	if got := mc.Requests["/items/{id}"]; got != 2 {
		t.Errorf("requests recorded under route pattern = %d, want 2 (all: %v)", got, mc.Requests)
	}
}
