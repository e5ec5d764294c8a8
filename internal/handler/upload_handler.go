package handler

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	_ "golang.org/x/image/webp"
)

const (
	maxUploadBytes  = 8 << 20
	maxImageSidePx  = 8000
	uploadFormField = "image"
)

// UploadImage stores a cover or inline image under a dated unique name
// and returns its public URL. The file must decode as an actual image;
// trusting the Content-Type header alone lets anything through.
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile(uploadFormField)
	if err != nil {
		respondError(c, http.StatusBadRequest, "no image in request")
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "image too large")
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	config, format, err := image.DecodeConfig(src)
	src.Close()
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is not a decodable image")
		return
	}
	if config.Width > maxImageSidePx || config.Height > maxImageSidePx {
		respondError(c, http.StatusBadRequest, "image dimensions too large")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = "." + format
	}
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, name)); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    a.uploadURL + "/" + name,
		"width":  config.Width,
		"height": config.Height,
	})
}
