package middleware

import (
	"errors"
	"net/http"
	"strings"

	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ctxSessionID     = "session_id"
	ctxUserID        = "user_id"
	ctxWalletAddress = "wallet_address"
)

// TokenVerifier 令牌校验接口
type TokenVerifier interface {
	VerifyToken(tokenString string) (*types.JWTClaims, error)
}

// AuthMiddleware JWT 认证中间件
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error: &types.APIError{
					Code:    "UNAUTHORIZED",
					Message: "Missing or malformed Authorization header",
				},
			})
			return
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Error: &types.APIError{
					Code:    "INVALID_TOKEN",
					Message: "Invalid or expired token",
					Details: err.Error(),
				},
			})
			logger.Error("AuthMiddleware Error: ", errors.New("invalid token"), "error: ", err)
			return
		}

		c.Set(ctxSessionID, claims.SessionID)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxWalletAddress, claims.WalletAddress)
		c.Next()
	}
}

// GetUserFromContext 从上下文获取用户信息
func GetUserFromContext(c *gin.Context) (int64, string, bool) {
	userID, ok1 := c.Get(ctxUserID)
	walletAddress, ok2 := c.Get(ctxWalletAddress)
	if !ok1 || !ok2 {
		return 0, "", false
	}
	id, ok1 := userID.(int64)
	addr, ok2 := walletAddress.(string)
	return id, addr, ok1 && ok2
}

// GetSessionFromContext 从上下文获取会话ID
func GetSessionFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxSessionID)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok && sid != ""
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
