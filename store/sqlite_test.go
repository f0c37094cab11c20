package store

import (
	"math"
	"testing"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := NewHistoryStore(":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndQueryPrediction(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SavePrediction("rose.jpg", "/uploads/rose.jpg", "rose", 92.5, "rose", 80.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	record, err := s.PredictionByID(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil {
		t.Fatalf("expected record, got nil")
	}
	if record.PredictionSVM != "rose" || record.ConfidenceSVM != 92.5 {
		t.Fatalf("unexpected record: %+v", record)
	}

	records, err := s.RecentPredictions(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestPredictionByIDMissing(t *testing.T) {
	s := newTestStore(t)

	record, err := s.PredictionByID(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for missing record, got %+v", record)
	}
}

func TestDeletePrediction(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SavePrediction("daisy.jpg", "/uploads/daisy.jpg", "daisy", 70, "daisy", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deleted, err := s.DeletePrediction(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected record to be deleted")
	}

	deleted, err = s.DeletePrediction(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Fatalf("expected no record to delete")
	}
}

func TestStatistics(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SavePrediction("a.jpg", "/uploads/a.jpg", "rose", 90, "rose", 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.SavePrediction("b.jpg", "/uploads/b.jpg", "rose", 70, "daisy", 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.SavePrediction("c.jpg", "/uploads/c.jpg", "daisy", 80, "daisy", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalPredictions != 3 {
		t.Fatalf("expected 3 predictions, got %d", stats.TotalPredictions)
	}
	if stats.ClassDistribution["rose"] != 2 || stats.ClassDistribution["daisy"] != 1 {
		t.Fatalf("unexpected class distribution: %v", stats.ClassDistribution)
	}
	if math.Abs(stats.AverageConfidenceSVM-80) > 1e-9 {
		t.Fatalf("expected svm average 80, got %v", stats.AverageConfidenceSVM)
	}
	if math.Abs(stats.AverageConfidenceKNN-80) > 1e-9 {
		t.Fatalf("expected knn average 80, got %v", stats.AverageConfidenceKNN)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPredictions != 0 {
		t.Fatalf("expected 0 predictions, got %d", stats.TotalPredictions)
	}
	if stats.AverageConfidenceSVM != 0 || stats.AverageConfidenceKNN != 0 {
		t.Fatalf("expected zero averages on empty store: %+v", stats)
	}
}
