package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/alvnz11/bunga-server/model"
	"github.com/alvnz11/bunga-server/service"
	"github.com/alvnz11/bunga-server/store"
	"github.com/alvnz11/bunga-server/utils"
)

func TestMain(m *testing.M) {
	if err := utils.InitLogger("release"); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.HistoryStore) {
	t.Helper()

	historyStore, err := store.NewHistoryStore(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { historyStore.Close() })

	bundle := &service.ModelBundle{
		Labels: &service.LabelEncoder{Classes: []string{"daisy", "rose"}},
	}
	h := NewHistoryHandler(historyStore, bundle)

	r := gin.New()
	r.GET("/api/v1/history", h.List)
	r.GET("/api/v1/history/:id", h.GetByID)
	r.DELETE("/api/v1/history/:id", h.Delete)
	r.GET("/api/v1/statistics", h.Statistics)
	r.GET("/api/v1/classes", h.Classes)
	r.GET("/api/v1/accuracy", h.Accuracy)
	return r, historyStore
}

func TestHistoryListEmpty(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp model.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Count != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHistoryGetAndDelete(t *testing.T) {
	r, historyStore := newTestRouter(t)

	id, err := historyStore.SavePrediction("rose.jpg", "/uploads/rose.jpg", "rose", 90, "rose", 85)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := fmt.Sprintf("/api/v1/history/%d", id)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, path, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// 删除后再查询应404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestHistoryGetInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history/abc", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestClasses(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool     `json:"success"`
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Classes) != 2 || resp.Classes[0] != "daisy" {
		t.Fatalf("unexpected classes: %v", resp.Classes)
	}
}

func TestAccuracyNotLoaded(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accuracy", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	r, historyStore := newTestRouter(t)

	if _, err := historyStore.SavePrediction("a.jpg", "/uploads/a.jpg", "rose", 90, "daisy", 70); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    model.Statistics `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.TotalPredictions != 1 {
		t.Fatalf("expected 1 prediction, got %d", resp.Data.TotalPredictions)
	}
}
