package service

import (
	"gocv.io/x/gocv"
)

// ExtractColor 提取色彩特征：HSV、Lab、RGB三个色彩空间，
// 每个通道取均值和标准差，共 3×3×2 = 18 个值。
// 顺序固定：色彩空间优先，通道次之，(mean, std)最内。
func ExtractColor(img gocv.Mat) []float64 {
	features := make([]float64, 0, ColorFeatureLen)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(img, &hsv, gocv.ColorRGBToHSV)
	features = append(features, channelStats(hsv)...)

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(img, &lab, gocv.ColorRGBToLab)
	features = append(features, channelStats(lab)...)

	// RGB直接取原图
	features = append(features, channelStats(img)...)

	return features
}

// channelStats 计算各通道的均值和总体标准差，按通道顺序交替排列
func channelStats(img gocv.Mat) []float64 {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(img, &mean, &stddev)

	stats := make([]float64, 0, img.Channels()*2)
	for i := 0; i < img.Channels(); i++ {
		stats = append(stats, mean.GetDoubleAt(i, 0), stddev.GetDoubleAt(i, 0))
	}
	return stats
}
