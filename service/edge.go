package service

import (
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Canny双阈值，与训练时一致
const (
	cannyLowThreshold  = 100
	cannyHighThreshold = 200
)

// ExtractEdge 提取边缘特征：Canny边缘图的均值和标准差，
// 加上Sobel水平/垂直梯度的绝对值均值和标准差，共6个值。
func ExtractEdge(img gocv.Mat) []float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorRGBToGray)

	features := make([]float64, 0, EdgeFeatureLen)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, cannyLowThreshold, cannyHighThreshold)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(edges, &mean, &stddev)
	features = append(features, mean.GetDoubleAt(0, 0), stddev.GetDoubleAt(0, 0))

	// Sobel在浮点精度下计算，避免8位截断
	features = append(features, sobelStats(gray, 1, 0)...)
	features = append(features, sobelStats(gray, 0, 1)...)

	return features
}

// sobelStats 计算Sobel梯度图的绝对值均值和总体标准差
func sobelStats(gray gocv.Mat, dx, dy int) []float64 {
	grad := gocv.NewMat()
	defer grad.Close()
	gocv.Sobel(gray, &grad, gocv.MatTypeCV64F, dx, dy, 3, 1, 0, gocv.BorderDefault)

	values, err := grad.DataPtrFloat64()
	if err != nil || len(values) == 0 {
		return []float64{0, 0}
	}

	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}

	return []float64{stat.Mean(abs, nil), stat.PopStdDev(values, nil)}
}
