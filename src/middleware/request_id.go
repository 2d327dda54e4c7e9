package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey コンテキストに格納するリクエストIDのキー
const RequestIDKey = "request_id"

// RequestIDHeader レスポンスヘッダー名
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware リクエストごとに一意のIDを付与するmiddleware
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// クライアントが指定した場合はそれを引き継ぐ
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
