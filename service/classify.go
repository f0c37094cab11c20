package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/alvnz11/bunga-server/config"
	"github.com/alvnz11/bunga-server/model"
	"github.com/alvnz11/bunga-server/utils"
)

// ClassifyService 推理编排：预处理→四类特征提取→加权拼接→标准化→双分类器预测。
// 任一阶段出错则整次推理终止，不返回部分结果。
// 模型集合在构造时传入，推理期间只读，多个请求可以并发使用。
type ClassifyService struct {
	bundle       *ModelBundle
	preprocessor *Preprocessor
	weights      FeatureWeights
	semaphore    chan struct{}
	queueTimeout time.Duration
}

func NewClassifyService(cfg *config.PipelineConfig, bundle *ModelBundle) *ClassifyService {
	return &ClassifyService{
		bundle:       bundle,
		preprocessor: NewPreprocessor(cfg),
		weights:      WeightsFromConfig(&cfg.Weights),
		semaphore:    make(chan struct{}, cfg.MaxConcurrent),
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
	}
}

// Bundle 返回服务持有的模型集合
func (s *ClassifyService) Bundle() *ModelBundle {
	return s.bundle
}

// ProcessImage 对上传的图片做完整推理并返回两个分类器的结果
func (s *ClassifyService) ProcessImage(imagePath string, md5 string) (*model.ClassifyResult, error) {
	// 并发控制
	ctx, cancel := context.WithTimeout(context.Background(), s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, fmt.Errorf("处理队列已满，请稍后重试")
	}

	startTime := time.Now()

	// 读取图片，统一转为RGB通道序
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("%w: failed to read image", ErrInvalidImage)
	}
	defer img.Close()

	width := img.Cols()
	height := img.Rows()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(img, &rgb, gocv.ColorBGRToRGB)

	utils.Logger.Info("processing image",
		zap.String("md5", md5),
		zap.Int("width", width),
		zap.Int("height", height))

	features, err := s.ExtractFeatures(rgb)
	if err != nil {
		return nil, err
	}

	// 标准化只做一次，两个分类器共用同一向量
	scaled, err := s.bundle.ScaleFeatures(features)
	if err != nil {
		return nil, err
	}

	svmClass, svmConfidence, err := s.bundle.PredictSVM(scaled)
	if err != nil {
		return nil, fmt.Errorf("svm prediction failed: %w", err)
	}

	knnClass, knnConfidence, err := s.bundle.PredictKNN(scaled)
	if err != nil {
		return nil, fmt.Errorf("knn prediction failed: %w", err)
	}

	result := &model.ClassifyResult{
		MD5:       md5,
		Width:     width,
		Height:    height,
		SVM:       model.PredictionResult{Class: svmClass, Confidence: svmConfidence},
		KNN:       model.PredictionResult{Class: knnClass, Confidence: knnConfidence},
		Timestamp: time.Now().Unix(),
	}

	utils.Logger.Info("image classified",
		zap.String("md5", md5),
		zap.Duration("duration", time.Since(startTime)),
		zap.String("svm_class", svmClass),
		zap.Float64("svm_confidence", svmConfidence),
		zap.String("knn_class", knnClass),
		zap.Float64("knn_confidence", knnConfidence))

	return result, nil
}

// ExtractFeatures 对RGB图片提取41维加权特征向量。
// 四个提取器互相独立，顺序固定：color、shape、texture、edge。
func (s *ClassifyService) ExtractFeatures(rgb gocv.Mat) ([]float64, error) {
	preprocessed, err := s.preprocessor.Process(rgb)
	if err != nil {
		return nil, err
	}
	defer preprocessed.Close()

	colorFeatures := ExtractColor(preprocessed)
	shapeFeatures := ExtractShape(preprocessed)
	textureFeatures := ExtractTexture(preprocessed)
	edgeFeatures := ExtractEdge(preprocessed)

	return CombineFeatures(colorFeatures, shapeFeatures, textureFeatures, edgeFeatures, s.weights)
}
