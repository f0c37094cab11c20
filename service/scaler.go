package service

import (
	"encoding/json"
	"fmt"
	"os"
)

// StandardScaler 标准化变换，均值和标准差由训练阶段拟合，
// 这里只做纯粹的套用：(v - mean) / scale。
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler 从JSON文件加载标准化参数
func LoadScaler(path string) (*StandardScaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scaler StandardScaler
	if err := json.Unmarshal(payload, &scaler); err != nil {
		return nil, fmt.Errorf("failed to parse scaler: %w", err)
	}
	if len(scaler.Mean) == 0 || len(scaler.Mean) != len(scaler.Scale) {
		return nil, fmt.Errorf("invalid scaler: mean has %d values, scale has %d",
			len(scaler.Mean), len(scaler.Scale))
	}

	return &scaler, nil
}

// Dim 返回模型期望的特征维度
func (s *StandardScaler) Dim() int {
	return len(s.Mean)
}

// Transform 对特征向量做标准化，返回新向量。
// 向量长度与拟合维度不一致时返回ErrDimensionMismatch。
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("%w: got %d features, scaler expects %d",
			ErrDimensionMismatch, len(features), len(s.Mean))
	}

	scaled := make([]float64, len(features))
	for i, v := range features {
		scaled[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return scaled, nil
}
