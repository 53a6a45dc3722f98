package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bassista/go_watchlist/internal/cache"
	"github.com/bassista/go_watchlist/internal/moviesource"
	"github.com/bassista/go_watchlist/internal/repository"
	"github.com/gin-gonic/gin"
)

// mockCrudService implements CrudService[repository.Record]
type mockCrudService struct {
	err     error
	items   []repository.Record
	added   []repository.Record
	removed []string
}

func (m *mockCrudService) All(ctx context.Context) ([]repository.Record, error) {
	return m.items, m.err
}

func (m *mockCrudService) Add(ctx context.Context, item repository.Record) ([]repository.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.added = append(m.added, item)
	return append(m.items, item), nil
}

func (m *mockCrudService) Remove(ctx context.Context, id string) ([]repository.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.removed = append(m.removed, id)
	return m.items, nil
}

func newCrudRouter(svc CrudService[repository.Record]) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cc := &CrudController[repository.Record]{Service: svc, Validator: RecordValidator{}}
	r := gin.New()
	r.GET("/resource", cc.GetAll)
	r.POST("/resource", cc.Create)
	r.DELETE("/resource/:id", cc.Delete)
	return r
}

func TestCrudController_Delete_MissingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cc := &CrudController[repository.Record]{Service: &mockCrudService{}}
	r := gin.New()
	// no :id segment, so the parameter is empty
	r.DELETE("/resource/", cc.Delete)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/resource/", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCrudController_Delete_Success(t *testing.T) {
	svc := &mockCrudService{items: []repository.Record{{ID: 2, Title: "Arrival"}}}
	r := newCrudRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/resource/1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp []repository.Record
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != 2 {
		t.Errorf("unexpected response body: %v", resp)
	}
	if len(svc.removed) != 1 || svc.removed[0] != "1" {
		t.Errorf("expected remove of id 1, got %v", svc.removed)
	}
}

func TestCrudController_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     int
		wantKind string
	}{
		{"invalid record", fmt.Errorf("title: %w", repository.ErrInvalidRecord), http.StatusBadRequest, string(repository.KindInvalidRecord)},
		{"write rejected", fmt.Errorf("quota: %w", repository.ErrWriteRejected), http.StatusInsufficientStorage, string(repository.KindWriteRejected)},
		{"storage unavailable", fmt.Errorf("closed: %w", repository.ErrStorageUnavailable), http.StatusServiceUnavailable, string(repository.KindStorageUnavailable)},
		{"unreadable blob", fmt.Errorf("decode: %w", repository.ErrDeserializationFailed), http.StatusInternalServerError, string(repository.KindDeserializationFailed)},
		{"closed watchlist", cache.ErrClosed, http.StatusServiceUnavailable, ""},
		{"movie not found", moviesource.ErrMovieNotFound, http.StatusNotFound, ""},
		{"no source", ErrNoSource, http.StatusNotImplemented, ""},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newCrudRouter(&mockCrudService{err: tt.err})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/resource/1", nil))

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
			if body["kind"] != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, body["kind"])
			}
		})
	}
}

func TestCrudController_Create(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantAdd bool
	}{
		{"valid record", `{"id":1,"title":"Dune","vote_average":7.8}`, http.StatusOK, true},
		{"malformed json", `{"id":1,`, http.StatusBadRequest, false},
		{"wrong type", `{"id":"one","title":"Dune"}`, http.StatusBadRequest, false},
		{"fails validation", `{"id":0,"title":"Dune"}`, http.StatusBadRequest, false},
		{"rating out of range", `{"id":1,"title":"Dune","vote_average":11}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCrudService{}
			r := newCrudRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/resource", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if added := len(svc.added) == 1; added != tt.wantAdd {
				t.Errorf("expected add=%v, got %v", tt.wantAdd, svc.added)
			}
		})
	}
}

func TestCrudController_GetAll(t *testing.T) {
	svc := &mockCrudService{items: []repository.Record{{ID: 1, Title: "Dune"}}}
	r := newCrudRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"title":"Dune"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
