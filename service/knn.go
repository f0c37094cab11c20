package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// KNNModel 最近邻分类器。训练样本全部保存在模型文件中，
// 预测时取k个最近样本做多数投票，投票比例即各类别概率。
type KNNModel struct {
	K       int         `json:"k"`
	Metric  string      `json:"metric"`
	Samples [][]float64 `json:"samples"`
	Labels  []int       `json:"labels"`

	numClasses int
}

// LoadKNNModel 从JSON文件加载KNN模型
func LoadKNNModel(path string) (*KNNModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var model KNNModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("failed to parse knn model: %w", err)
	}
	if len(model.Samples) == 0 || len(model.Samples) != len(model.Labels) {
		return nil, fmt.Errorf("invalid knn model: %d samples, %d labels",
			len(model.Samples), len(model.Labels))
	}
	if model.K <= 0 {
		model.K = 5
	}
	if model.K > len(model.Samples) {
		model.K = len(model.Samples)
	}

	for _, label := range model.Labels {
		if label+1 > model.numClasses {
			model.numClasses = label + 1
		}
	}

	return &model, nil
}

// Dim 返回模型期望的特征维度
func (m *KNNModel) Dim() int {
	return len(m.Samples[0])
}

// Predict 对标准化后的特征向量做预测，返回类别编码和[0,100]的置信度。
// 最近邻分类器天然提供投票比例，置信度恒为 100×最大类别概率。
func (m *KNNModel) Predict(scaled []float64) (int, float64, error) {
	if len(scaled) != len(m.Samples[0]) {
		return 0, 0, fmt.Errorf("%w: got %d features, knn expects %d",
			ErrDimensionMismatch, len(scaled), len(m.Samples[0]))
	}

	type neighbor struct {
		distance float64
		label    int
	}

	neighbors := make([]neighbor, len(m.Samples))
	for i, sample := range m.Samples {
		neighbors[i] = neighbor{
			distance: m.distance(scaled, sample),
			label:    m.Labels[i],
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	votes := make([]int, m.numClasses)
	for _, n := range neighbors[:m.K] {
		votes[n.label]++
	}

	best := 0
	for label, count := range votes {
		if count > votes[best] {
			best = label
		}
	}

	confidence := float64(votes[best]) / float64(m.K) * 100
	return best, confidence, nil
}

// distance 按模型配置的度量计算距离，默认欧氏距离
func (m *KNNModel) distance(a, b []float64) float64 {
	if m.Metric == "manhattan" {
		sum := 0.0
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	}

	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
