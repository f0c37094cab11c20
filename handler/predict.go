package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alvnz11/bunga-server/config"
	"github.com/alvnz11/bunga-server/model"
	"github.com/alvnz11/bunga-server/service"
	"github.com/alvnz11/bunga-server/store"
	"github.com/alvnz11/bunga-server/utils"
)

type PredictHandler struct {
	cfg             *config.Config
	redisService    *service.RedisService
	classifyService *service.ClassifyService
	historyStore    *store.HistoryStore
}

func NewPredictHandler(cfg *config.Config, redis *service.RedisService, classify *service.ClassifyService, history *store.HistoryStore) *PredictHandler {
	return &PredictHandler{
		cfg:             cfg,
		redisService:    redis,
		classifyService: classify,
		historyStore:    history,
	}
}

// Predict 处理图片上传并执行分类
func (h *PredictHandler) Predict(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.Logger.Error("failed to get uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传图片文件",
			Error:   err.Error(),
		})
		return
	}

	// 验证文件大小
	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return
	}

	// 验证文件类型
	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型，仅支持 JPEG/PNG",
		})
		return
	}

	// 生成文件名
	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%d%s", utils.GenerateID(), ext)
	savePath := filepath.Join(h.cfg.Upload.UploadDir, filename)

	// 保存文件
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		utils.Logger.Error("failed to save file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "保存文件失败",
			Error:   err.Error(),
		})
		return
	}

	// 计算MD5
	md5, err := utils.FileMD5(savePath)
	if err != nil {
		utils.Logger.Error("failed to calculate md5", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "计算文件哈希失败",
			Error:   err.Error(),
		})
		return
	}

	// 确保文件在处理完成后被删除（如果配置启用）
	if h.cfg.Pipeline.CleanupTempFiles {
		defer func() {
			if err := os.Remove(savePath); err != nil {
				utils.Logger.Warn("failed to delete temp file",
					zap.String("file", savePath),
					zap.Error(err))
			}
		}()
	}

	utils.Logger.Info("file uploaded",
		zap.String("filename", filename),
		zap.String("md5", md5),
		zap.Int64("size", file.Size))

	// 检查缓存
	ctx := context.Background()
	cachedResult, err := h.redisService.GetClassifyResult(ctx, md5)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
	}

	if cachedResult != nil {
		utils.Logger.Info("cache hit", zap.String("md5", md5))
		c.JSON(http.StatusOK, model.PredictResponse{
			Success: true,
			Message: "分类成功（来自缓存）",
			Data:    cachedResult,
		})
		return
	}

	// 执行推理
	result, err := h.classifyService.ProcessImage(savePath, md5)
	if err != nil {
		h.respondClassifyError(c, err)
		return
	}
	result.Filename = filename

	// 保存历史记录
	recordID, err := h.historyStore.SavePrediction(filename, savePath,
		result.SVM.Class, result.SVM.Confidence,
		result.KNN.Class, result.KNN.Confidence)
	if err != nil {
		utils.Logger.Warn("failed to save prediction history", zap.Error(err))
	}

	// 保存到缓存
	if err := h.redisService.SetClassifyResult(ctx, md5, result); err != nil {
		utils.Logger.Warn("failed to set cache", zap.Error(err))
	}

	c.JSON(http.StatusOK, model.PredictResponse{
		Success: true,
		Message: "分类成功",
		ID:      recordID,
		Data:    result,
	})
}

// GetByMD5 根据MD5查询已缓存的分类结果
func (h *PredictHandler) GetByMD5(c *gin.Context) {
	md5 := c.Param("md5")
	if md5 == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "MD5参数缺失",
		})
		return
	}

	ctx := context.Background()
	result, err := h.redisService.GetClassifyResult(ctx, md5)
	if err != nil {
		utils.Logger.Error("failed to get classify result", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询失败",
			Error:   err.Error(),
		})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该图片的分类结果",
		})
		return
	}

	c.JSON(http.StatusOK, model.PredictResponse{
		Success: true,
		Message: "查询成功",
		Data:    result,
	})
}

// respondClassifyError 将推理错误翻译为HTTP响应
func (h *PredictHandler) respondClassifyError(c *gin.Context, err error) {
	utils.Logger.Error("failed to classify image", zap.Error(err))

	switch {
	case errors.Is(err, service.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "图片无法解析",
			Error:   err.Error(),
		})
	case errors.Is(err, service.ErrModelsNotReady):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Success: false,
			Message: "模型尚未就绪",
			Error:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "图片分类失败",
			Error:   err.Error(),
		})
	}
}

func (h *PredictHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}
