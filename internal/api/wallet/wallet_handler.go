package wallet

import (
	"errors"
	"net/http"

	"digitalwill-backend/internal/middleware"
	"digitalwill-backend/internal/service/wallet"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 钱包处理器
type Handler struct {
	walletService wallet.Service
}

// NewHandler 创建钱包处理器
func NewHandler(walletService wallet.Service) *Handler {
	return &Handler{
		walletService: walletService,
	}
}

// RegisterRoutes 注册钱包相关路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	walletGroup := router.Group("/wallet")
	{
		// 连接钱包
		// http://localhost:8080/api/v1/wallet/connect
		walletGroup.POST("/connect", h.Connect)

		// 需要认证的端点
		// http://localhost:8080/api/v1/wallet/disconnect
		walletGroup.POST("/disconnect", middleware.AuthMiddleware(h.walletService), h.Disconnect)
		// http://localhost:8080/api/v1/wallet/summary
		walletGroup.GET("/summary", middleware.AuthMiddleware(h.walletService), h.Summary)
	}
}

// Connect 连接钱包
// @Summary 连接钱包
// @Description 使用本地签名账户或只读观察地址建立会话
// @Tags 钱包
// @Accept json
// @Produce json
// @Param request body types.WalletConnectRequest true "钱包连接请求"
// @Success 200 {object} types.APIResponse{data=types.WalletConnectResponse}
// @Failure 400 {object} types.APIResponse
// @Failure 404 {object} types.APIResponse
// @Router /api/v1/wallet/connect [post]
func (h *Handler) Connect(c *gin.Context) {
	var req types.WalletConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		logger.Error("Connect Error: ", errors.New("invalid request parameters"), "error: ", err)
		return
	}

	response, err := h.walletService.Connect(c.Request.Context(), &req)
	if err != nil {
		var statusCode int
		var errorCode string

		switch {
		case errors.Is(err, wallet.ErrInvalidRequest):
			statusCode = http.StatusBadRequest
			errorCode = "INVALID_REQUEST"
		case errors.Is(err, wallet.ErrInvalidAddress):
			statusCode = http.StatusBadRequest
			errorCode = "INVALID_WALLET_ADDRESS"
		case errors.Is(err, wallet.ErrInvalidVariant):
			statusCode = http.StatusBadRequest
			errorCode = "INVALID_VARIANT"
		case errors.Is(err, wallet.ErrUnknownAccount):
			statusCode = http.StatusNotFound
			errorCode = "ACCOUNT_NOT_FOUND"
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
		logger.Error("Connect Error: ", err, "errorCode: ", errorCode)
		return
	}

	logger.Info("Connect :", "Address: ", response.Address, "CanSign: ", response.CanSign, "Variant: ", response.Variant)
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    response,
	})
}

// Disconnect 断开钱包
// @Summary 断开钱包
// @Description 关闭当前会话, 停止轮询并丢弃流程状态
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} types.APIResponse
// @Failure 401 {object} types.APIResponse
// @Router /api/v1/wallet/disconnect [post]
func (h *Handler) Disconnect(c *gin.Context) {
	sessionID, ok := middleware.GetSessionFromContext(c)
	if !ok {
		unauthorized(c, "Disconnect")
		return
	}

	if err := h.walletService.Disconnect(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, wallet.ErrSessionNotFound) {
			c.JSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error: &types.APIError{
					Code:    "SESSION_NOT_FOUND",
					Message: err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
		logger.Error("Disconnect Error: ", err, "session_id", sessionID)
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    gin.H{"session_id": sessionID},
	})
}

// Summary 钱包概览
// @Summary 钱包概览
// @Description 截断地址, APT 余额与美元估值
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} types.APIResponse{data=types.WalletSummary}
// @Failure 401 {object} types.APIResponse
// @Failure 500 {object} types.APIResponse
// @Router /api/v1/wallet/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	sessionID, ok := middleware.GetSessionFromContext(c)
	if !ok {
		unauthorized(c, "Summary")
		return
	}

	summary, err := h.walletService.Summary(c.Request.Context(), sessionID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorCode := "INTERNAL_ERROR"
		if errors.Is(err, wallet.ErrSessionNotFound) {
			statusCode = http.StatusUnauthorized
			errorCode = "SESSION_NOT_FOUND"
		}
		c.JSON(statusCode, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    errorCode,
				Message: err.Error(),
			},
		})
		logger.Error("Summary Error: ", err, "errorCode: ", errorCode)
		return
	}

	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    summary,
	})
}

func unauthorized(c *gin.Context, op string) {
	c.JSON(http.StatusUnauthorized, types.APIResponse{
		Success: false,
		Error: &types.APIError{
			Code:    "UNAUTHORIZED",
			Message: "User not authenticated",
		},
	})
	logger.Error(op+" Error: ", errors.New("user not authenticated"))
}
