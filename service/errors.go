package service

import "errors"

// 推理流水线的错误类型。所有错误都表示数据或配置缺陷，
// 调用方不应重试，任一阶段出错则整次推理终止，不返回部分结果。
var (
	// ErrInvalidImage 图片无法解码或尺寸为零
	ErrInvalidImage = errors.New("invalid image")

	// ErrDimensionMismatch 特征向量长度与模型期望维度不一致
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

	// ErrModelsNotReady 有必需的模型文件未加载
	ErrModelsNotReady = errors.New("models not loaded")

	// ErrUnknownLabel 解码得到的标签不在已知类别集合内
	ErrUnknownLabel = errors.New("unknown class label")
)
