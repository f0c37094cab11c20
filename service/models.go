package service

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alvnz11/bunga-server/utils"
)

// 模型目录下的文件名约定
const (
	svmModelFile        = "svm_model.json"
	knnModelFile        = "knn_model.json"
	scalerFile          = "scaler.json"
	labelEncoderFile    = "label_encoder.json"
	accuracyMetricsFile = "accuracy_metrics.json"
)

// ModelBundle 一次性加载的模型集合，加载完成后只读，
// 通过显式传递进入推理服务，不放在全局可变状态里。
// 允许部分缺失：缺失的模型在预测时返回ErrModelsNotReady。
type ModelBundle struct {
	SVM     *SVMModel
	KNN     *KNNModel
	Scaler  *StandardScaler
	Labels  *LabelEncoder
	Metrics map[string]interface{}
}

// LoadModelBundle 从模型目录加载全部模型文件。
// 单个文件缺失或损坏只记录警告，服务以降级状态继续运行。
func LoadModelBundle(dir string) *ModelBundle {
	bundle := &ModelBundle{}

	if svm, err := LoadSVMModel(filepath.Join(dir, svmModelFile)); err != nil {
		utils.Logger.Warn("svm model not loaded", zap.String("dir", dir), zap.Error(err))
	} else {
		bundle.SVM = svm
		utils.Logger.Info("svm model loaded", zap.Int("classes", len(svm.Weights)), zap.Int("dim", svm.Dim()))
	}

	if knn, err := LoadKNNModel(filepath.Join(dir, knnModelFile)); err != nil {
		utils.Logger.Warn("knn model not loaded", zap.String("dir", dir), zap.Error(err))
	} else {
		bundle.KNN = knn
		utils.Logger.Info("knn model loaded", zap.Int("samples", len(knn.Samples)), zap.Int("k", knn.K))
	}

	if scaler, err := LoadScaler(filepath.Join(dir, scalerFile)); err != nil {
		utils.Logger.Warn("scaler not loaded", zap.String("dir", dir), zap.Error(err))
	} else {
		bundle.Scaler = scaler
		utils.Logger.Info("scaler loaded", zap.Int("dim", scaler.Dim()))
	}

	if labels, err := LoadLabelEncoder(filepath.Join(dir, labelEncoderFile)); err != nil {
		utils.Logger.Warn("label encoder not loaded", zap.String("dir", dir), zap.Error(err))
	} else {
		bundle.Labels = labels
		utils.Logger.Info("label encoder loaded", zap.Strings("classes", labels.Classes))
	}

	if metrics, err := loadAccuracyMetrics(filepath.Join(dir, accuracyMetricsFile)); err != nil {
		utils.Logger.Warn("accuracy metrics not loaded", zap.String("dir", dir), zap.Error(err))
	} else {
		bundle.Metrics = metrics
		utils.Logger.Info("accuracy metrics loaded")
	}

	return bundle
}

// loadAccuracyMetrics 读取训练阶段产出的准确率记录，内容原样透传
func loadAccuracyMetrics(path string) (map[string]interface{}, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var metrics map[string]interface{}
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// Ready 全部必需模型是否就绪（准确率记录是可选的）
func (b *ModelBundle) Ready() bool {
	return b.SVM != nil && b.KNN != nil && b.Scaler != nil && b.Labels != nil
}

// ClassNames 已知类别名列表，编码表未加载时为空
func (b *ModelBundle) ClassNames() []string {
	if b.Labels == nil {
		return nil
	}
	return b.Labels.ClassNames()
}

// ScaleFeatures 用已加载的标准化参数变换特征向量，
// 每次推理只计算一次，两个分类器共用同一结果。
func (b *ModelBundle) ScaleFeatures(features []float64) ([]float64, error) {
	if b.Scaler == nil {
		return nil, ErrModelsNotReady
	}
	return b.Scaler.Transform(features)
}

// PredictSVM 用SVM预测标准化后的特征向量，返回类别名和置信度
func (b *ModelBundle) PredictSVM(scaled []float64) (string, float64, error) {
	if b.SVM == nil || b.Scaler == nil || b.Labels == nil {
		return "", 0, ErrModelsNotReady
	}

	code, confidence, err := b.SVM.Predict(scaled)
	if err != nil {
		return "", 0, err
	}

	name, err := b.Labels.Decode(code)
	if err != nil {
		return "", 0, err
	}
	return name, confidence, nil
}

// PredictKNN 用KNN预测标准化后的特征向量，返回类别名和置信度
func (b *ModelBundle) PredictKNN(scaled []float64) (string, float64, error) {
	if b.KNN == nil || b.Scaler == nil || b.Labels == nil {
		return "", 0, ErrModelsNotReady
	}

	code, confidence, err := b.KNN.Predict(scaled)
	if err != nil {
		return "", 0, err
	}

	name, err := b.Labels.Decode(code)
	if err != nil {
		return "", 0, err
	}
	return name, confidence, nil
}
