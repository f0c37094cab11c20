package service

import (
	"fmt"

	"github.com/alvnz11/bunga-server/config"
)

// 特征向量固定布局：18色彩 + 7形状 + 10纹理 + 6边缘 = 41维。
// 顺序与训练时一致，不可变更。
const (
	ColorFeatureLen   = 18
	ShapeFeatureLen   = 7
	TextureFeatureLen = 10
	EdgeFeatureLen    = 6
	FeatureVectorLen  = ColorFeatureLen + ShapeFeatureLen + TextureFeatureLen + EdgeFeatureLen
)

// FamilyRange 特征族在向量中的半开区间 [Start, End)
type FamilyRange struct {
	Name  string
	Start int
	End   int
}

// FeatureRanges 各特征族的偏移表，Combiner和诊断工具共用，
// 避免魔法数字散落在各处。
var FeatureRanges = []FamilyRange{
	{Name: "color", Start: 0, End: ColorFeatureLen},
	{Name: "shape", Start: ColorFeatureLen, End: ColorFeatureLen + ShapeFeatureLen},
	{Name: "texture", Start: ColorFeatureLen + ShapeFeatureLen, End: ColorFeatureLen + ShapeFeatureLen + TextureFeatureLen},
	{Name: "edge", Start: ColorFeatureLen + ShapeFeatureLen + TextureFeatureLen, End: FeatureVectorLen},
}

// FeatureWeights 特征族权重，进程级常量，加载一次后只读
type FeatureWeights struct {
	Color   float64
	Shape   float64
	Texture float64
	Edge    float64
}

// DefaultFeatureWeights 与训练时一致的默认权重
func DefaultFeatureWeights() FeatureWeights {
	return FeatureWeights{Color: 1.5, Shape: 1.2, Texture: 1.0, Edge: 0.8}
}

// WeightsFromConfig 从配置构造特征权重
func WeightsFromConfig(cfg *config.WeightsConfig) FeatureWeights {
	return FeatureWeights{
		Color:   cfg.Color,
		Shape:   cfg.Shape,
		Texture: cfg.Texture,
		Edge:    cfg.Edge,
	}
}

func (w FeatureWeights) byFamily(name string) float64 {
	switch name {
	case "color":
		return w.Color
	case "shape":
		return w.Shape
	case "texture":
		return w.Texture
	case "edge":
		return w.Edge
	}
	return 1.0
}

// CombineFeatures 按固定顺序拼接四个子向量并应用族权重。
// 返回新向量，不与输入共享底层数组；权重对每个向量只应用一次。
func CombineFeatures(color, shape, texture, edge []float64, weights FeatureWeights) ([]float64, error) {
	if len(color) != ColorFeatureLen || len(shape) != ShapeFeatureLen ||
		len(texture) != TextureFeatureLen || len(edge) != EdgeFeatureLen {
		return nil, fmt.Errorf("%w: got %d+%d+%d+%d, want %d+%d+%d+%d",
			ErrDimensionMismatch,
			len(color), len(shape), len(texture), len(edge),
			ColorFeatureLen, ShapeFeatureLen, TextureFeatureLen, EdgeFeatureLen)
	}

	combined := make([]float64, 0, FeatureVectorLen)
	combined = append(combined, color...)
	combined = append(combined, shape...)
	combined = append(combined, texture...)
	combined = append(combined, edge...)

	for _, r := range FeatureRanges {
		w := weights.byFamily(r.Name)
		for i := r.Start; i < r.End; i++ {
			combined[i] *= w
		}
	}

	return combined, nil
}
