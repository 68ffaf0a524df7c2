package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facultypool/internal/directory"
)

func newTestRouter(repo *stubRepo, facErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(&stubFaculty{fac: testFaculty(), err: facErr}, repo, "@thapar.edu", "+91", DefaultLimits, zap.NewNop())
	r := gin.New()
	NewHandler(svc, zap.NewNop()).Register(r.Group("/v1"))
	return r
}

func postBooking(t *testing.T, r *gin.Engine, path string, req Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func TestBookEndpoint(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		repo := &stubRepo{}
		w := postBooking(t, newTestRouter(repo, nil), "/v1/faculty/7/appointments", validRequest())
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
		}
		if len(repo.inserted) != 1 {
			t.Errorf("inserted %d rows, want 1", len(repo.inserted))
		}
	})

	t.Run("faculty mismatch", func(t *testing.T) {
		req := validRequest()
		req.FacultyID = 8
		w := postBooking(t, newTestRouter(&stubRepo{}, nil), "/v1/faculty/7/appointments", req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if !strings.Contains(w.Body.String(), "security error") {
			t.Errorf("body = %s, want security error", w.Body.String())
		}
	})

	t.Run("unknown faculty redirects to the listing", func(t *testing.T) {
		w := postBooking(t, newTestRouter(&stubRepo{}, directory.ErrNotFound), "/v1/faculty/999/appointments", Request{FacultyID: 999})
		if w.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/v1/faculty" {
			t.Errorf("redirect to %q, want /v1/faculty", loc)
		}
	})

	t.Run("validation failures are listed", func(t *testing.T) {
		w := postBooking(t, newTestRouter(&stubRepo{}, nil), "/v1/faculty/7/appointments", Request{FacultyID: 7})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var body struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if len(body.Errors) == 0 {
			t.Error("expected a list of field errors")
		}
	})

	t.Run("quota violations conflict", func(t *testing.T) {
		w := postBooking(t, newTestRouter(&stubRepo{byFacultyIP: 1}, nil), "/v1/faculty/7/appointments", validRequest())
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409: %s", w.Code, w.Body.String())
		}
	})

	t.Run("non-numeric id redirects", func(t *testing.T) {
		w := postBooking(t, newTestRouter(&stubRepo{}, nil), "/v1/faculty/abc/appointments", validRequest())
		if w.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", w.Code)
		}
	})
}
