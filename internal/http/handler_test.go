package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/phoenix-shipper/booking-docs/internal/http/middleware"
	"github.com/phoenix-shipper/booking-docs/internal/model"
	"github.com/phoenix-shipper/booking-docs/internal/service"
)

type stubPDF struct{ err error }

func (s stubPDF) Generate(_ model.Job, jobID, _ string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-" + jobID), nil
}

func (stubPDF) PageCount(job model.Job) int { return 1 + len(job.Pickups) }

type stubManifest struct{}

func (stubManifest) Generate(_ model.Job, jobID string) ([]byte, error) {
	return []byte("PK-" + jobID), nil
}

type stubStore struct{ records []model.DocumentRecord }

func (s *stubStore) Create(_ context.Context, record *model.DocumentRecord) error {
	s.records = append(s.records, *record)
	return nil
}

func (s *stubStore) ListByJob(_ context.Context, jobID string) ([]model.DocumentRecord, error) {
	var out []model.DocumentRecord
	for _, rec := range s.records {
		if rec.JobID == jobID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubStore) GetLatest(_ context.Context, jobID string, kind model.DocumentKind) (*model.DocumentRecord, error) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].JobID == jobID && s.records[i].Kind == kind {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type roleParser struct{}

func (roleParser) Parse(token string) (model.Principal, error) {
	switch token {
	case "admin":
		return model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}, nil
	case "customer":
		return model.Principal{UserID: uuid.New(), Role: model.UserRoleCustomer}, nil
	}
	return model.Principal{}, errors.New("unknown token")
}

func newTestRouter(renderer stubPDF) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewDocumentService(renderer, stubManifest{}, &stubStore{}, nil, nil, zerolog.Nop())
	handler := NewHandler(svc, zerolog.Nop())
	return NewRouter(handler, middleware.Auth(roleParser{}), "test", []string{"*"}, zerolog.Nop())
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func pdfRequest(jobID string) map[string]any {
	return map[string]any{
		"job_id": jobID,
		"otp":    "4321",
		"job": map[string]any{
			"jobType":    "single",
			"pickups":    []map[string]any{{"address": "1 St", "suburb": "X"}},
			"deliveries": []map[string]any{{"address": "2 Rd", "suburb": "Y"}},
			"deliveryGoods": []map[string]any{{
				"packagingTypes": map[string]any{
					"boxes": map[string]any{"selected": true, "quantity": "3", "weight": "12.5"},
				},
			}},
		},
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(stubPDF{}), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGeneratePDF(t *testing.T) {
	router := newTestRouter(stubPDF{})

	rec := do(t, router, http.MethodPost, "/bookings/documents/pdf", "customer", pdfRequest("JOB-1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Phoenix_Shipper_Complete_JOB-1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get("X-Page-Count"))
	assert.Equal(t, "%PDF-JOB-1", rec.Body.String())
}

func TestGeneratePDFErrors(t *testing.T) {
	router := newTestRouter(stubPDF{})

	rec := do(t, router, http.MethodPost, "/bookings/documents/pdf", "", pdfRequest("JOB-1"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/bookings/documents/pdf", "admin", map[string]any{"job_id": "JOB-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := pdfRequest("JOB-1")
	bad["job"].(map[string]any)["jobType"] = "teleport"
	rec = do(t, router, http.MethodPost, "/bookings/documents/pdf", "admin", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, quantity := range []any{1e20, "2.9"} {
		huge := pdfRequest("JOB-1")
		goods := huge["job"].(map[string]any)["deliveryGoods"].([]map[string]any)
		goods[0]["packagingTypes"].(map[string]any)["boxes"].(map[string]any)["quantity"] = quantity
		rec = do(t, router, http.MethodPost, "/bookings/documents/pdf", "admin", huge)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity %v", quantity)
	}

	tooMany := pdfRequest("JOB-1")
	goods := tooMany["job"].(map[string]any)["deliveryGoods"].([]map[string]any)
	goods[0]["packagingTypes"].(map[string]any)["boxes"].(map[string]any)["quantity"] = model.MaxUnitsPerLocation + 1
	rec = do(t, router, http.MethodPost, "/bookings/documents/pdf", "admin", tooMany)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceed the limit")

	failing := newTestRouter(stubPDF{err: errors.New("boom")})
	rec = do(t, failing, http.MethodPost, "/bookings/documents/pdf", "admin", pdfRequest("JOB-1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate PDF. Please try again."}`, rec.Body.String())
}

func TestManifestAndListing(t *testing.T) {
	router := newTestRouter(stubPDF{})

	rec := do(t, router, http.MethodPost, "/bookings/documents/manifest", "customer", pdfRequest("JOB-2"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, router, http.MethodPost, "/bookings/documents/manifest", "admin", pdfRequest("JOB-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Phoenix_Shipper_Manifest_JOB-2.xlsx"`, rec.Header().Get("Content-Disposition"))

	rec = do(t, router, http.MethodGet, "/bookings/JOB-2/documents", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []model.DocumentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, model.DocumentKindManifest, body.Data[0].Kind)

	rec = do(t, router, http.MethodGet, "/bookings/JOB-404/documents", "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestDocument(t *testing.T) {
	router := newTestRouter(stubPDF{})

	rec := do(t, router, http.MethodGet, "/bookings/JOB-3/documents/latest", "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/bookings/documents/pdf", "admin", pdfRequest("JOB-3"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/bookings/documents/manifest", "admin", pdfRequest("JOB-3"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data model.DocumentRecord `json:"data"`
	}
	rec = do(t, router, http.MethodGet, "/bookings/JOB-3/documents/latest", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.DocumentKindPDF, body.Data.Kind)

	rec = do(t, router, http.MethodGet, "/bookings/JOB-3/documents/latest?kind=xlsx", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Phoenix_Shipper_Manifest_JOB-3.xlsx", body.Data.FileName)

	rec = do(t, router, http.MethodGet, "/bookings/JOB-3/documents/latest?kind=docx", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/bookings/JOB-3/documents/latest", "customer", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
