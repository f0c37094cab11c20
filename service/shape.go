package service

import (
	"math"

	"gocv.io/x/gocv"
)

// huLogEpsilon 防止对零取对数
const huLogEpsilon = 1e-10

// ExtractShape 提取形状特征：灰度化后用Otsu自动阈值二值化，
// 计算7个Hu不变矩并做符号对数压缩，共7个值。
// 全黑或全白的掩码也能得到7个有限值，不会出错。
func ExtractShape(img gocv.Mat) []float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorRGBToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	moments := gocv.Moments(binary, false)
	hu := huMoments(moments)

	// 对数压缩：Hu矩动态范围极大，压缩后数值才可比较
	features := make([]float64, ShapeFeatureLen)
	for i, m := range hu {
		features[i] = logCompress(m)
	}
	return features
}

// huMoments 由归一化中心矩计算7个旋转/缩放/平移不变矩
func huMoments(m map[string]float64) [ShapeFeatureLen]float64 {
	nu20, nu02, nu11 := m["nu20"], m["nu02"], m["nu11"]
	nu30, nu21, nu12, nu03 := m["nu30"], m["nu21"], m["nu12"], m["nu03"]

	p := nu30 + nu12
	q := nu21 + nu03

	var hu [ShapeFeatureLen]float64
	hu[0] = nu20 + nu02
	hu[1] = (nu20-nu02)*(nu20-nu02) + 4*nu11*nu11
	hu[2] = (nu30-3*nu12)*(nu30-3*nu12) + (3*nu21-nu03)*(3*nu21-nu03)
	hu[3] = p*p + q*q
	hu[4] = (nu30-3*nu12)*p*(p*p-3*q*q) + (3*nu21-nu03)*q*(3*p*p-q*q)
	hu[5] = (nu20-nu02)*(p*p-q*q) + 4*nu11*p*q
	hu[6] = (3*nu21-nu03)*p*(p*p-3*q*q) - (nu30-3*nu12)*q*(3*p*p-q*q)
	return hu
}

// logCompress 符号对数压缩：sign(m) * -log10(|m| + eps)
func logCompress(m float64) float64 {
	return -sign(m) * math.Log10(math.Abs(m)+huLogEpsilon)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
