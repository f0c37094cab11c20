package service

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/alvnz11/bunga-server/config"
)

// Preprocessor 负责图片标准化预处理：
// 缩放到固定尺寸、CLAHE对比度增强、双边滤波去噪、逐通道颜色归一化。
// 所有参数在构造时固定，调用时不可调整。
type Preprocessor struct {
	targetSize     int
	clipLimit      float64
	tileSize       int
	bilateralD     int
	bilateralSigma float64
}

func NewPreprocessor(cfg *config.PipelineConfig) *Preprocessor {
	return &Preprocessor{
		targetSize:     cfg.TargetSize,
		clipLimit:      cfg.ClaheClipLimit,
		tileSize:       cfg.ClaheTileSize,
		bilateralD:     cfg.BilateralD,
		bilateralSigma: cfg.BilateralSigma,
	}
}

// Process 对RGB图片做预处理，返回新的Mat，调用方负责Close。
// 各步骤依次作用于上一步的输出，输入Mat不会被修改。
func (p *Preprocessor) Process(img gocv.Mat) (gocv.Mat, error) {
	if img.Empty() || img.Rows() == 0 || img.Cols() == 0 {
		return gocv.Mat{}, ErrInvalidImage
	}

	// 1. 缩放到标准尺寸
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(p.targetSize, p.targetSize), 0, 0, gocv.InterpolationLanczos4)

	// 2. CLAHE只作用于Lab的亮度通道，保持颜色分布不变
	enhanced := p.applyCLAHE(&resized)
	defer enhanced.Close()

	// 3. 双边滤波：抑制噪声同时保留边缘
	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.BilateralFilter(enhanced, &denoised, p.bilateralD, p.bilateralSigma, p.bilateralSigma)

	// 4. 逐通道线性拉伸到[0,255]
	return p.normalizeChannels(&denoised), nil
}

// applyCLAHE 在Lab色彩空间的L通道上做限制对比度自适应直方图均衡
func (p *Preprocessor) applyCLAHE(img *gocv.Mat) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(*img, &lab, gocv.ColorRGBToLab)

	channels := gocv.Split(lab)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(p.clipLimit, image.Pt(p.tileSize, p.tileSize))
	defer clahe.Close()

	equalized := gocv.NewMat()
	clahe.Apply(channels[0], &equalized)
	channels[0].Close()
	channels[0] = equalized

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	enhanced := gocv.NewMat()
	gocv.CvtColor(merged, &enhanced, gocv.ColorLabToRGB)
	return enhanced
}

// normalizeChannels 对每个颜色通道独立做min-max拉伸，
// 常量通道（max==min）原样保留，避免除零。
func (p *Preprocessor) normalizeChannels(img *gocv.Mat) gocv.Mat {
	channels := gocv.Split(*img)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	for i := range channels {
		minVal, maxVal, _, _ := gocv.MinMaxLoc(channels[i])
		if maxVal > minVal {
			gocv.Normalize(channels[i], &channels[i], 0, 255, gocv.NormMinMax)
		}
	}

	normalized := gocv.NewMat()
	gocv.Merge(channels, &normalized)
	return normalized
}
