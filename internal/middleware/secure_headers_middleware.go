package middleware

import "net/http"

// Map tiles and the Leaflet bundle come from third-party hosts.
const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com https://cdn.jsdelivr.net; " +
	"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net; " +
	"img-src 'self' data: blob: https://*.tile.openstreetmap.org https://unpkg.com; " +
	"connect-src 'self' https://nominatim.openstreetmap.org; " +
	"font-src 'self' https://cdn.jsdelivr.net; object-src 'none'; frame-ancestors 'none'"

// SecureHeaders sets the security headers sent with every response.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
