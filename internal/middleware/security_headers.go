package middleware

import "net/http"

// ChartScriptOrigin はChart.jsを配信するCDNのオリジン。
const ChartScriptOrigin = "https://cdn.jsdelivr.net"

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' " + ChartScriptOrigin + "; " +
	"style-src 'self'; " +
	"img-src 'self' data:; " +
	"form-action 'self'; " +
	"frame-ancestors 'none'; " +
	"base-uri 'self'"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			next.ServeHTTP(w, r)
		})
	}
}
