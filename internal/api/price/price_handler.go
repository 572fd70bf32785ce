package price

import (
	"errors"
	"net/http"
	"strconv"

	"digitalwill-backend/internal/service/price"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 价格处理器
type Handler struct {
	priceService price.Service
}

// NewHandler 创建价格处理器
func NewHandler(priceService price.Service) *Handler {
	return &Handler{
		priceService: priceService,
	}
}

// RegisterRoutes 注册价格相关路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	priceGroup := router.Group("/price")
	{
		// http://localhost:8080/api/v1/price/aptos
		priceGroup.GET("/aptos", h.GetPrice)
		// http://localhost:8080/api/v1/price/aptos/refresh
		priceGroup.POST("/aptos/refresh", h.Refresh)
		// http://localhost:8080/api/v1/price/aptos/history?days=7
		priceGroup.GET("/aptos/history", h.GetHistory)
	}
}

// GetPrice 获取 APT 行情
// @Summary 获取 APT 行情
// @Description 当前价格, 24h 高低, 市值, 成交量与涨跌幅
// @Tags 价格
// @Produce json
// @Success 200 {object} types.APIResponse{data=types.PriceResponse}
// @Failure 503 {object} types.APIResponse
// @Router /api/v1/price/aptos [get]
func (h *Handler) GetPrice(c *gin.Context) {
	resp, err := h.priceService.GetPrice(c.Request.Context())
	if err != nil {
		h.handleError(c, "GetPrice", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    resp,
	})
}

// Refresh 立即刷新行情
// @Summary 立即刷新行情
// @Tags 价格
// @Produce json
// @Success 200 {object} types.APIResponse{data=types.PriceResponse}
// @Failure 503 {object} types.APIResponse
// @Router /api/v1/price/aptos/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	resp, err := h.priceService.Refresh(c.Request.Context())
	if err != nil {
		h.handleError(c, "Refresh", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    resp,
	})
}

// GetHistory 历史价格柱状图
// @Summary 历史价格柱状图
// @Description 每日价格归一化为 10 到 100 的柱高
// @Tags 价格
// @Produce json
// @Param days query int false "天数, 1-365"
// @Success 200 {object} types.APIResponse{data=types.PriceHistoryResponse}
// @Failure 400 {object} types.APIResponse
// @Failure 503 {object} types.APIResponse
// @Router /api/v1/price/aptos/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	days := 0
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.APIResponse{
				Success: false,
				Error: &types.APIError{
					Code:    "INVALID_PARAMS",
					Message: "Invalid days",
					Details: err.Error(),
				},
			})
			return
		}
		days = parsed
	}

	resp, err := h.priceService.GetHistory(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, "GetHistory", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    resp,
	})
}

func (h *Handler) handleError(c *gin.Context, op string, err error) {
	var statusCode int
	var errorCode string

	switch {
	case errors.Is(err, price.ErrInvalidDays):
		statusCode = http.StatusBadRequest
		errorCode = "INVALID_PARAMS"
	case errors.Is(err, price.ErrPriceUnavailable):
		statusCode = http.StatusServiceUnavailable
		errorCode = "PRICE_UNAVAILABLE"
	default:
		statusCode = http.StatusInternalServerError
		errorCode = "INTERNAL_ERROR"
	}

	c.JSON(statusCode, types.APIResponse{
		Success: false,
		Error: &types.APIError{
			Code:    errorCode,
			Message: err.Error(),
		},
	})
	logger.Error(op+" Error: ", err, "errorCode: ", errorCode)
}
