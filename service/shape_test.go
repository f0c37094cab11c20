package service

import (
	"math"
	"testing"
)

func TestLogCompress(t *testing.T) {
	// 零矩在epsilon保护下得到有限值0
	if v := logCompress(0); v != 0 {
		t.Fatalf("expected 0 for zero moment, got %v", v)
	}

	// 符号保留，数值压缩到可比较范围
	pos := logCompress(1e-3)
	if pos <= 0 || math.IsInf(pos, 0) || math.IsNaN(pos) {
		t.Fatalf("expected finite positive value, got %v", pos)
	}

	neg := logCompress(-1e-3)
	if neg >= 0 || math.IsInf(neg, 0) || math.IsNaN(neg) {
		t.Fatalf("expected finite negative value, got %v", neg)
	}
	if math.Abs(pos+neg) > 1e-12 {
		t.Fatalf("expected symmetric compression, got %v and %v", pos, neg)
	}
}

func TestHuMomentsZeroMask(t *testing.T) {
	// 全零掩码：归一化中心矩全为0，7个不变矩都是有限值
	hu := huMoments(map[string]float64{})
	for i, v := range hu {
		if v != 0 {
			t.Fatalf("hu[%d] = %v, expected 0 for empty moments", i, v)
		}
		if compressed := logCompress(v); math.IsInf(compressed, 0) || math.IsNaN(compressed) {
			t.Fatalf("compressed hu[%d] not finite: %v", i, compressed)
		}
	}
}

func TestHuMomentsInvariants(t *testing.T) {
	// 各向同性时 nu20==nu02 且 nu11==0：h2应为0，h1应为二者之和
	m := map[string]float64{"nu20": 0.25, "nu02": 0.25, "nu11": 0}
	hu := huMoments(m)
	if math.Abs(hu[0]-0.5) > 1e-12 {
		t.Fatalf("h1 = %v, expected 0.5", hu[0])
	}
	if hu[1] != 0 {
		t.Fatalf("h2 = %v, expected 0", hu[1])
	}
}
