package service

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestKNNPredict(t *testing.T) {
	model := writeKNNModel(t, `{
		"k": 3,
		"metric": "euclidean",
		"samples": [[0, 0], [0.1, 0.1], [0.2, 0], [5, 5], [5.1, 5]],
		"labels": [0, 0, 1, 1, 1]
	}`)

	code, confidence, err := model.Predict([]float64{0, 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Fatalf("expected class 0, got %d", code)
	}
	// 3个最近邻中2票给类别0：置信度 2/3 × 100
	if math.Abs(confidence-200.0/3.0) > 1e-9 {
		t.Fatalf("expected confidence %v, got %v", 200.0/3.0, confidence)
	}
}

func TestKNNPredictManhattan(t *testing.T) {
	model := writeKNNModel(t, `{
		"k": 1,
		"metric": "manhattan",
		"samples": [[0, 0], [10, 10]],
		"labels": [0, 1]
	}`)

	code, confidence, err := model.Predict([]float64{9, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Fatalf("expected class 1, got %d", code)
	}
	if confidence != 100 {
		t.Fatalf("expected confidence 100, got %v", confidence)
	}
}

func TestKNNPredictDimensionMismatch(t *testing.T) {
	model := writeKNNModel(t, `{
		"k": 1,
		"samples": [[0, 0]],
		"labels": [0]
	}`)

	_, _, err := model.Predict([]float64{1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLoadKNNModelClampsK(t *testing.T) {
	model := writeKNNModel(t, `{
		"k": 10,
		"samples": [[0, 0], [1, 1]],
		"labels": [0, 1]
	}`)

	if model.K != 2 {
		t.Fatalf("expected k clamped to 2, got %d", model.K)
	}
}

func writeKNNModel(t *testing.T, payload string) *KNNModel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knn_model.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := LoadKNNModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}
