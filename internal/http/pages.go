package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed templates/style.css
var styleCSS []byte

type imagePageData struct {
	Prompt       string
	ImageURL     string
	ErrorMessage string
}

// loadTemplates parsea las vistas embebidas en el binario.
func loadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// serveStyle sirve la hoja de estilos.
func serveStyle(c *gin.Context) {
	c.Data(http.StatusOK, "text/css; charset=utf-8", styleCSS)
}
