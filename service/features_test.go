package service

import (
	"errors"
	"math"
	"testing"
)

func TestFeatureRangesLayout(t *testing.T) {
	if FeatureVectorLen != 41 {
		t.Fatalf("expected 41 features, got %d", FeatureVectorLen)
	}

	expectedStart := 0
	for _, r := range FeatureRanges {
		if r.Start != expectedStart {
			t.Fatalf("range %s starts at %d, expected %d", r.Name, r.Start, expectedStart)
		}
		if r.End <= r.Start {
			t.Fatalf("range %s is empty", r.Name)
		}
		expectedStart = r.End
	}
	if expectedStart != FeatureVectorLen {
		t.Fatalf("ranges cover %d features, expected %d", expectedStart, FeatureVectorLen)
	}
}

func TestCombineFeatures(t *testing.T) {
	color := constantSlice(ColorFeatureLen, 1)
	shape := constantSlice(ShapeFeatureLen, 1)
	texture := constantSlice(TextureFeatureLen, 1)
	edge := constantSlice(EdgeFeatureLen, 1)

	weights := FeatureWeights{Color: 1.5, Shape: 1.2, Texture: 1.0, Edge: 0.8}
	combined, err := CombineFeatures(color, shape, texture, edge, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(combined) != FeatureVectorLen {
		t.Fatalf("expected %d features, got %d", FeatureVectorLen, len(combined))
	}

	for _, r := range FeatureRanges {
		want := weights.byFamily(r.Name)
		for i := r.Start; i < r.End; i++ {
			if math.Abs(combined[i]-want) > 1e-12 {
				t.Fatalf("feature %d (%s) = %v, expected %v", i, r.Name, combined[i], want)
			}
		}
	}
}

func TestCombineFeaturesWeightLinearity(t *testing.T) {
	color := constantSlice(ColorFeatureLen, 2)
	shape := constantSlice(ShapeFeatureLen, 2)
	texture := constantSlice(TextureFeatureLen, 2)
	edge := constantSlice(EdgeFeatureLen, 2)

	base, err := CombineFeatures(color, shape, texture, edge, FeatureWeights{Color: 1, Shape: 1, Texture: 1, Edge: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 只缩放color族权重：对应区间按比例缩放，其他族不变
	k := 3.0
	scaled, err := CombineFeatures(color, shape, texture, edge, FeatureWeights{Color: k, Shape: 1, Texture: 1, Edge: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range FeatureRanges {
		factor := 1.0
		if r.Name == "color" {
			factor = k
		}
		for i := r.Start; i < r.End; i++ {
			if math.Abs(scaled[i]-base[i]*factor) > 1e-12 {
				t.Fatalf("feature %d (%s) = %v, expected %v", i, r.Name, scaled[i], base[i]*factor)
			}
		}
	}
}

func TestCombineFeaturesNoAliasing(t *testing.T) {
	color := constantSlice(ColorFeatureLen, 5)
	shape := constantSlice(ShapeFeatureLen, 5)
	texture := constantSlice(TextureFeatureLen, 5)
	edge := constantSlice(EdgeFeatureLen, 5)

	_, err := CombineFeatures(color, shape, texture, edge, DefaultFeatureWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 输入子向量不能被修改
	for i, v := range color {
		if v != 5 {
			t.Fatalf("input color[%d] was mutated to %v", i, v)
		}
	}
}

func TestCombineFeaturesDimensionMismatch(t *testing.T) {
	_, err := CombineFeatures(
		constantSlice(ColorFeatureLen-1, 1),
		constantSlice(ShapeFeatureLen, 1),
		constantSlice(TextureFeatureLen, 1),
		constantSlice(EdgeFeatureLen, 1),
		DefaultFeatureWeights())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func constantSlice(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
