package service

import (
	"math"

	"gocv.io/x/gocv"
)

// LBP参数：半径3，采样点数 8×3 = 24，与训练时一致
const (
	lbpRadius = 3
	lbpPoints = 8 * lbpRadius
)

// ExtractTexture 提取纹理特征：对灰度图计算旋转不变的uniform LBP，
// 统计归一化直方图后取前10个bin，共10个值。
func ExtractTexture(img gocv.Mat) []float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorRGBToGray)

	return lbpHistogram(gray.ToBytes(), gray.Cols(), gray.Rows())
}

// lbpHistogram 对灰度图逐像素计算uniform LBP并统计密度直方图。
// bin数为最大出现的模式值+1；不足10个bin时补零，保证输出长度固定为10。
func lbpHistogram(gray []uint8, width, height int) []float64 {
	counts := make([]int, lbpPoints+2)
	maxPattern := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := lbpPattern(gray, width, height, y, x)
			counts[p]++
			if p > maxPattern {
				maxPattern = p
			}
		}
	}

	total := float64(width * height)
	features := make([]float64, TextureFeatureLen)
	for i := 0; i < TextureFeatureLen && i <= maxPattern; i++ {
		features[i] = float64(counts[i]) / total
	}
	return features
}

// lbpPattern 计算单个像素的旋转不变uniform模式值：
// 在半径为lbpRadius的圆周上等距采样lbpPoints个点（双线性插值），
// 与中心比较得到二进制序列；0-1跳变不超过2次的序列取置1位数（0..P），
// 其余归入统一的杂项bin（P+1）。
func lbpPattern(gray []uint8, width, height, y, x int) int {
	center := float64(gray[y*width+x])

	var bits [lbpPoints]bool
	for i := 0; i < lbpPoints; i++ {
		angle := 2 * math.Pi * float64(i) / lbpPoints
		sy := float64(y) - lbpRadius*math.Sin(angle)
		sx := float64(x) + lbpRadius*math.Cos(angle)
		bits[i] = bilinearSample(gray, width, height, sy, sx) >= center
	}

	transitions := 0
	ones := 0
	for i := 0; i < lbpPoints; i++ {
		if bits[i] {
			ones++
		}
		if bits[i] != bits[(i+1)%lbpPoints] {
			transitions++
		}
	}

	if transitions <= 2 {
		return ones
	}
	return lbpPoints + 1
}

// bilinearSample 双线性插值采样，图像边界外按0处理
func bilinearSample(gray []uint8, width, height int, y, x float64) float64 {
	y0 := int(math.Floor(y))
	x0 := int(math.Floor(x))
	fy := y - float64(y0)
	fx := x - float64(x0)

	at := func(yy, xx int) float64 {
		if yy < 0 || yy >= height || xx < 0 || xx >= width {
			return 0
		}
		return float64(gray[yy*width+xx])
	}

	top := at(y0, x0)*(1-fx) + at(y0, x0+1)*fx
	bottom := at(y0+1, x0)*(1-fx) + at(y0+1, x0+1)*fx
	return top*(1-fy) + bottom*fy
}
