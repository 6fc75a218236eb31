/*
 * @module api/middleware/actor
 * @description 操作者识别中间件，从请求头提取操作者身份并注入上下文
 * @architecture 中间件模式 - HTTP请求拦截和上下文注入
 * @stateFlow 请求头提取 -> 上下文注入 -> 下一个处理器
 * @rules 身份由网关层认证后以请求头透传，本服务只做提取不做校验
 * @dependencies net/http, context
 * @refs api/routes.go
 */

package middleware

import (
	"context"
	"net"
	"net/http"

	"formhub-service/service/activity"
)

// ContextKey 上下文键类型
type ContextKey string

// ActorKey 操作者在上下文中的键
const ActorKey ContextKey = "actor"

// HeaderUserID 承载操作者身份的请求头
const HeaderUserID = "X-User-ID"

// ActorExtractor 操作者识别中间件
// 未携带身份头的请求作为匿名操作者放行，权限控制在具体接口上执行
func ActorExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := activity.Actor{
			ID:        r.Header.Get(HeaderUserID),
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		}

		ctx := context.WithValue(r.Context(), ActorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor 从上下文中获取操作者
func GetActor(ctx context.Context) activity.Actor {
	if actor, ok := ctx.Value(ActorKey).(activity.Actor); ok {
		return actor
	}
	return activity.Actor{}
}

// clientIP 解析客户端IP，优先取反向代理透传的地址
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
