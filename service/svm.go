package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// SVMModel 最大间隔分类器（one-vs-rest线性形式）。
// 每个类别一组权重和截距，决策值 margin_c = w_c·x + b_c，预测取最大者。
// 置信度策略在加载时根据模型能力选定一次，之后不再判断：
// 带Platt系数的模型走概率路径，否则用间隔启发式。
type SVMModel struct {
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
	ProbA      []float64   `json:"prob_a,omitempty"`
	ProbB      []float64   `json:"prob_b,omitempty"`

	confidence confidenceDeriver
}

// LoadSVMModel 从JSON文件加载SVM模型并选定置信度策略
func LoadSVMModel(path string) (*SVMModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var model SVMModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("failed to parse svm model: %w", err)
	}
	if len(model.Weights) == 0 || len(model.Weights) != len(model.Intercepts) {
		return nil, fmt.Errorf("invalid svm model: %d weight rows, %d intercepts",
			len(model.Weights), len(model.Intercepts))
	}

	if len(model.ProbA) == len(model.Weights) && len(model.ProbB) == len(model.Weights) && len(model.ProbA) > 0 {
		model.confidence = plattConfidence{probA: model.ProbA, probB: model.ProbB}
	} else {
		model.confidence = marginConfidence{}
	}

	return &model, nil
}

// Dim 返回模型期望的特征维度
func (m *SVMModel) Dim() int {
	return len(m.Weights[0])
}

// Predict 对标准化后的特征向量做预测，返回类别编码和[0,100]的置信度
func (m *SVMModel) Predict(scaled []float64) (int, float64, error) {
	margins, err := m.decisionMargins(scaled)
	if err != nil {
		return 0, 0, err
	}

	best := 0
	for i, v := range margins {
		if v > margins[best] {
			best = i
		}
	}

	return best, m.confidence.derive(margins), nil
}

// decisionMargins 计算每个类别的决策值
func (m *SVMModel) decisionMargins(scaled []float64) ([]float64, error) {
	if len(scaled) != len(m.Weights[0]) {
		return nil, fmt.Errorf("%w: got %d features, svm expects %d",
			ErrDimensionMismatch, len(scaled), len(m.Weights[0]))
	}

	margins := make([]float64, len(m.Weights))
	for c, w := range m.Weights {
		dot := m.Intercepts[c]
		for i, v := range scaled {
			dot += w[i] * v
		}
		margins[c] = dot
	}
	return margins, nil
}

// confidenceDeriver 由决策值推导置信度，在加载时按模型能力选择实现
type confidenceDeriver interface {
	derive(margins []float64) float64
}

// plattConfidence 概率路径：对每个类别的决策值做Platt标定
// p_c = 1 / (1 + exp(A_c·m_c + B_c))，归一化后取最大概率×100。
type plattConfidence struct {
	probA []float64
	probB []float64
}

func (p plattConfidence) derive(margins []float64) float64 {
	probs := make([]float64, len(margins))
	sum := 0.0
	for i, m := range margins {
		probs[i] = 1 / (1 + math.Exp(p.probA[i]*m+p.probB[i]))
		sum += probs[i]
	}

	best := 0.0
	for _, v := range probs {
		if sum > 0 {
			v /= sum
		}
		if v > best {
			best = v
		}
	}
	return best * 100
}

// marginConfidence 间隔启发式：没有概率能力时，
// 由最大决策值换算伪概率 clamp(50, 100, (max+5)×10)。
// 上下界强制饱和，这是没有概率标定时的折中方案。
type marginConfidence struct{}

func (marginConfidence) derive(margins []float64) float64 {
	maxMargin := margins[0]
	for _, v := range margins[1:] {
		if v > maxMargin {
			maxMargin = v
		}
	}

	confidence := (maxMargin + 5) * 10
	if confidence < 50 {
		return 50
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
