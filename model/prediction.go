package model

// PredictionResult 单个分类器的预测结果
type PredictionResult struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// ClassifyResult 一次推理的完整结果，两个分类器各出一份预测
type ClassifyResult struct {
	MD5       string           `json:"md5"`
	Filename  string           `json:"filename"`
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	SVM       PredictionResult `json:"svm"`
	KNN       PredictionResult `json:"knn"`
	Timestamp int64            `json:"timestamp"`
}

// PredictResponse 预测接口响应
type PredictResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	ID      int64           `json:"id,omitempty"`
	Data    *ClassifyResult `json:"data,omitempty"`
}

// HistoryRecord 一条持久化的预测历史
type HistoryRecord struct {
	ID            int64   `json:"id"`
	ImageFilename string  `json:"image_filename"`
	ImagePath     string  `json:"image_path"`
	PredictionSVM string  `json:"prediction_svm"`
	ConfidenceSVM float64 `json:"confidence_svm"`
	PredictionKNN string  `json:"prediction_knn"`
	ConfidenceKNN float64 `json:"confidence_knn"`
	CreatedAt     string  `json:"created_at"`
}

// HistoryResponse 历史查询响应
type HistoryResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Data    []HistoryRecord `json:"data"`
}

// Statistics 历史记录聚合统计
type Statistics struct {
	TotalPredictions     int64            `json:"total_predictions"`
	ClassDistribution    map[string]int64 `json:"class_distribution"`
	AverageConfidenceSVM float64          `json:"average_confidence_svm"`
	AverageConfidenceKNN float64          `json:"average_confidence_knn"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
