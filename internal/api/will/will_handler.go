package will

import (
	"errors"
	"net/http"

	"digitalwill-backend/internal/middleware"
	"digitalwill-backend/internal/service/will"
	"digitalwill-backend/internal/types"
	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 遗嘱流程处理器
type Handler struct {
	willService will.Service
	verifier    middleware.TokenVerifier
}

// NewHandler 创建遗嘱流程处理器
func NewHandler(willService will.Service, verifier middleware.TokenVerifier) *Handler {
	return &Handler{
		willService: willService,
		verifier:    verifier,
	}
}

// RegisterRoutes 注册遗嘱相关路由, 全部需要认证
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	willGroup := router.Group("/will", middleware.AuthMiddleware(h.verifier))
	{
		// 流程状态
		// http://localhost:8080/api/v1/will/state
		willGroup.GET("/state", h.GetState)
		// 更新收款人与金额
		// http://localhost:8080/api/v1/will/inputs
		willGroup.PUT("/inputs", h.UpdateInputs)
		// 执行操作
		// http://localhost:8080/api/v1/will/actions/create_will
		willGroup.POST("/actions/:action", h.Invoke)
		// 链上记录
		// http://localhost:8080/api/v1/will/record
		willGroup.GET("/record", h.GetRecord)
		// 事件日志
		// http://localhost:8080/api/v1/will/events
		willGroup.GET("/events", h.GetEvents)
		// 操作记录
		// http://localhost:8080/api/v1/will/activities
		willGroup.GET("/activities", h.ListActivities)
	}
}

// GetState 获取流程状态
// @Summary 获取流程状态
// @Description 当前步骤, 派生标志与每个操作的可用性
// @Tags 遗嘱
// @Produce json
// @Security BearerAuth
// @Success 200 {object} types.APIResponse{data=will.StateView}
// @Failure 401 {object} types.APIResponse
// @Router /api/v1/will/state [get]
func (h *Handler) GetState(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "GetState")
	if !ok {
		return
	}

	view, err := h.willService.GetState(sessionID)
	if err != nil {
		h.handleError(c, "GetState", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    view,
	})
}

// UpdateInputs 更新表单输入
// @Summary 更新表单输入
// @Description 设置收款人地址和/或金额, 已完成步骤对应的输入不可修改
// @Tags 遗嘱
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body types.UpdateInputsRequest true "输入"
// @Success 200 {object} types.APIResponse{data=will.StateView}
// @Failure 400 {object} types.APIResponse
// @Failure 409 {object} types.APIResponse
// @Router /api/v1/will/inputs [put]
func (h *Handler) UpdateInputs(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "UpdateInputs")
	if !ok {
		return
	}

	var req types.UpdateInputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request parameters",
				Details: err.Error(),
			},
		})
		logger.Error("UpdateInputs Error: ", errors.New("invalid request parameters"), "error: ", err)
		return
	}

	view, err := h.willService.UpdateInputs(sessionID, &req)
	if err != nil {
		h.handleError(c, "UpdateInputs", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    view,
	})
}

// Invoke 执行操作
// @Summary 执行操作
// @Description 提交一笔合约交易, 失败时仍返回 200 并在状态中携带错误信息
// @Tags 遗嘱
// @Produce json
// @Security BearerAuth
// @Param action path string true "操作" Enums(initialize, create_will, ping, claim, set_recipient, deposit, initialize_will)
// @Success 200 {object} types.APIResponse{data=will.StateView}
// @Failure 400 {object} types.APIResponse
// @Failure 409 {object} types.APIResponse
// @Router /api/v1/will/actions/{action} [post]
func (h *Handler) Invoke(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "Invoke")
	if !ok {
		return
	}
	action := c.Param("action")

	view, err := h.willService.Invoke(c.Request.Context(), sessionID, action)
	if err != nil {
		h.handleError(c, "Invoke", err)
		return
	}

	logger.Info("Invoke :", "Session: ", sessionID, "Action: ", action, "Step: ", view.State.Step)
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    view,
	})
}

// GetRecord 获取链上遗嘱记录
// @Summary 获取链上遗嘱记录
// @Description 最近一次轮询结果, 缓存缺失时实时查询 get_will
// @Tags 遗嘱
// @Produce json
// @Security BearerAuth
// @Success 200 {object} types.APIResponse{data=types.WillRecordResponse}
// @Failure 401 {object} types.APIResponse
// @Failure 502 {object} types.APIResponse
// @Router /api/v1/will/record [get]
func (h *Handler) GetRecord(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "GetRecord")
	if !ok {
		return
	}

	record, err := h.willService.GetRecord(c.Request.Context(), sessionID)
	if err != nil {
		h.handleError(c, "GetRecord", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    record,
	})
}

// GetEvents 获取事件日志
// @Summary 获取事件日志
// @Tags 遗嘱
// @Produce json
// @Security BearerAuth
// @Success 200 {object} types.APIResponse{data=[]workflow.Event}
// @Failure 401 {object} types.APIResponse
// @Router /api/v1/will/events [get]
func (h *Handler) GetEvents(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "GetEvents")
	if !ok {
		return
	}

	events, err := h.willService.GetEvents(sessionID)
	if err != nil {
		h.handleError(c, "GetEvents", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    events,
	})
}

// ListActivities 操作记录
// @Summary 操作记录
// @Description 当前钱包的操作记录, 按时间倒序分页
// @Tags 遗嘱
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} types.APIResponse{data=types.ActivityListResponse}
// @Failure 400 {object} types.APIResponse
// @Failure 401 {object} types.APIResponse
// @Router /api/v1/will/activities [get]
func (h *Handler) ListActivities(c *gin.Context) {
	sessionID, ok := sessionFromContext(c, "ListActivities")
	if !ok {
		return
	}

	var req types.ActivityListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Error("ListActivities BindQuery Error: ", err)
		c.JSON(http.StatusBadRequest, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "INVALID_PARAMS",
				Message: "Invalid query parameters",
				Details: err.Error(),
			},
		})
		return
	}

	resp, err := h.willService.ListActivities(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleError(c, "ListActivities", err)
		return
	}
	c.JSON(http.StatusOK, types.APIResponse{
		Success: true,
		Data:    resp,
	})
}

// handleError 根据错误类型选择状态码
func (h *Handler) handleError(c *gin.Context, op string, err error) {
	var statusCode int
	var errorCode string

	switch {
	case errors.Is(err, will.ErrSessionNotFound):
		statusCode = http.StatusUnauthorized
		errorCode = "SESSION_NOT_FOUND"
	case errors.Is(err, workflow.ErrUnknownAction):
		statusCode = http.StatusBadRequest
		errorCode = "UNKNOWN_ACTION"
	case errors.Is(err, will.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorCode = "INVALID_REQUEST"
	case errors.Is(err, workflow.ErrInputLocked):
		statusCode = http.StatusConflict
		errorCode = "INPUT_LOCKED"
	case errors.Is(err, workflow.ErrNotConnected),
		errors.Is(err, workflow.ErrReadOnly),
		errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrStepLocked),
		errors.Is(err, workflow.ErrInvalidRecipient),
		errors.Is(err, workflow.ErrInvalidAmount):
		statusCode = http.StatusConflict
		errorCode = "ACTION_NOT_ALLOWED"
	case op == "GetRecord":
		statusCode = http.StatusBadGateway
		errorCode = "CHAIN_UNAVAILABLE"
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

func sessionFromContext(c *gin.Context, op string) (string, bool) {
	sessionID, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.APIResponse{
			Success: false,
			Error: &types.APIError{
				Code:    "UNAUTHORIZED",
				Message: "User not authenticated",
			},
		})
		logger.Error(op+" Error: ", errors.New("user not authenticated"))
	}
	return sessionID, ok
}
