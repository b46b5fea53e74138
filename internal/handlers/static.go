package handlers

import (
	"net/http"
	"path"
	"strings"
)

var staticTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".ico":  "image/x-icon",
	".html": "text/html; charset=utf-8",
	".png":  "image/png",
	".svg":  "image/svg+xml",
}

// ProtectStatic serves only known asset types and never lists directories.
func ProtectStatic(fs http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		ct, ok := staticTypes[path.Ext(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", ct)
		fs.ServeHTTP(w, r)
	}
}

// Pages serves the HTML pages from dir; "/" maps to index.html.
func Pages(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	protected := ProtectStatic(fs)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.ServeFile(w, r, path.Join(dir, "index.html"))
			return
		}
		protected(w, r)
	}
}
