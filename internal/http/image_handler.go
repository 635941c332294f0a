package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutor-llm/internal/service"
)

// ImageHandler atiende la página de generación de imágenes.
type ImageHandler struct {
	logger *zap.Logger
	images *service.ImageService
}

func NewImageHandler(logger *zap.Logger, images *service.ImageService) *ImageHandler {
	return &ImageHandler{
		logger: logger,
		images: images,
	}
}

// ImagePage maneja GET /image.
func (h *ImageHandler) ImagePage(c *gin.Context) {
	c.HTML(http.StatusOK, "image.html", imagePageData{})
}

// CreateImage maneja POST /image. Los errores nunca salen del handler: se muestran en la página.
func (h *ImageHandler) CreateImage(c *gin.Context) {
	prompt := c.PostForm("user_input")

	url, err := h.images.Generate(c.Request.Context(), prompt)
	if err != nil {
		h.logger.Warn("error generating image", zap.Error(err))
		c.HTML(http.StatusOK, "image.html", imagePageData{
			Prompt:       prompt,
			ErrorMessage: service.ImageErrorMessage,
		})
		return
	}

	c.HTML(http.StatusOK, "image.html", imagePageData{
		Prompt:   prompt,
		ImageURL: url,
	})
}
