package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alvnz11/bunga-server/model"
	"github.com/alvnz11/bunga-server/service"
	"github.com/alvnz11/bunga-server/store"
	"github.com/alvnz11/bunga-server/utils"
)

type HistoryHandler struct {
	historyStore *store.HistoryStore
	bundle       *service.ModelBundle
}

func NewHistoryHandler(history *store.HistoryStore, bundle *service.ModelBundle) *HistoryHandler {
	return &HistoryHandler{
		historyStore: history,
		bundle:       bundle,
	}
}

// List 查询预测历史，按时间倒序
func (h *HistoryHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	records, err := h.historyStore.RecentPredictions(limit)
	if err != nil {
		utils.Logger.Error("failed to query history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询历史失败",
			Error:   err.Error(),
		})
		return
	}

	if records == nil {
		records = []model.HistoryRecord{}
	}
	c.JSON(http.StatusOK, model.HistoryResponse{
		Success: true,
		Count:   len(records),
		Data:    records,
	})
}

// GetByID 按ID查询单条历史记录
func (h *HistoryHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "无效的记录ID",
		})
		return
	}

	record, err := h.historyStore.PredictionByID(id)
	if err != nil {
		utils.Logger.Error("failed to query history record", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询历史失败",
			Error:   err.Error(),
		})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该记录",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// Delete 按ID删除历史记录
func (h *HistoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "无效的记录ID",
		})
		return
	}

	deleted, err := h.historyStore.DeletePrediction(id)
	if err != nil {
		utils.Logger.Error("failed to delete history record", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "删除失败",
			Error:   err.Error(),
		})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该记录",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "删除成功",
	})
}

// Statistics 查询历史聚合统计
func (h *HistoryHandler) Statistics(c *gin.Context) {
	stats, err := h.historyStore.Statistics()
	if err != nil {
		utils.Logger.Error("failed to query statistics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询统计失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// Classes 查询已知类别列表
func (h *HistoryHandler) Classes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"classes": h.bundle.ClassNames(),
	})
}

// Accuracy 查询训练阶段的准确率记录，内容原样透传
func (h *HistoryHandler) Accuracy(c *gin.Context) {
	if h.bundle.Metrics == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "准确率记录未加载",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.bundle.Metrics,
	})
}
