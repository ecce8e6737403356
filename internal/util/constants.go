package util

const (
	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
)

// 客户端可读的登录标记 cookie，仅用于前端引导，不具备安全含义
const AuthMarkerCookie = "is_authenticated"

// gin.Context 键
const (
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"
)
