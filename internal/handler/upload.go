package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/expomatch/server/internal/config"
)

// allowedImageTypes is the MIME allowlist for uploads, matched against the
// sniffed content type, not the client-provided header.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadHandler writes image uploads to local disk and hands back the URL
// under the static /uploads prefix. Uploads are decoupled from event
// records: the client submits the returned URL with a later create/update.
type UploadHandler struct {
	Cfg config.Config
}

func NewUploadHandler(cfg config.Config) *UploadHandler {
	return &UploadHandler{Cfg: cfg}
}

// uploadFilename builds a collision-resistant name: nanosecond timestamp,
// a random suffix and the original extension. Not cryptographically
// unique, but a collision needs the same nanosecond and the same random
// suffix, which is negligible for this volume.
func uploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), suffix, ext)
}

// Upload accepts a multipart "image" field.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no file uploaded"})
	}
	if fh.Size > h.Cfg.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file exceeds the 5 MiB limit"})
	}

	src, err := fh.Open()
	if err != nil {
		c.Logger().Errorf("upload: open form file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer src.Close()

	// Sniff the real content type from the first 512 bytes.
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		c.Logger().Errorf("upload: read head: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	if !allowedImageTypes[http.DetectContentType(head[:n])] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type, use JPG, PNG, GIF or WEBP"})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		c.Logger().Errorf("upload: rewind: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		c.Logger().Errorf("upload: mkdir %s: %v", h.Cfg.UploadDir, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	name := uploadFilename(fh.Filename)
	dst, err := os.Create(filepath.Join(h.Cfg.UploadDir, name))
	if err != nil {
		c.Logger().Errorf("upload: create file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		c.Logger().Errorf("upload: write file: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"url":      h.Cfg.PublicBaseURL + "/uploads/" + name,
		"filename": name,
	})
}
