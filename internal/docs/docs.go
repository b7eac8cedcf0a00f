package docs

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml swagger.html
var files embed.FS

func OpenAPIHandler() http.HandlerFunc {
	return serveFile("openapi.yaml", "application/yaml; charset=utf-8", "openapi not found")
}

func SwaggerUIHandler() http.HandlerFunc {
	return serveFile("swagger.html", "text/html; charset=utf-8", "swagger ui not found")
}

func serveFile(name, contentType, missing string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := files.ReadFile(name)
		if err != nil {
			http.Error(w, missing, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}
