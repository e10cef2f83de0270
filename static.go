package main

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"darlingdetails/pkg/media"

	"github.com/gin-gonic/gin"
)

// serveDerivative streams /uploads/{optimized|thumbnails}/{name} from the
// configured store with a one day public cache.
func (s *server) serveDerivative(c *gin.Context) {
	area, name := c.Param("area"), c.Param("name")
	if area != media.AreaOptimized && area != media.AreaThumbnails ||
		name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		c.Status(http.StatusNotFound)
		return
	}
	rc, err := s.files.Open(c.Request.Context(), area, name)
	if errors.Is(err, media.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("area", area).Str("name", name).Msg("failed to open derivative")
		c.Status(http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", media.CacheControl)
	if f, ok := rc.(*os.File); ok {
		fi, err := f.Stat()
		if err == nil {
			http.ServeContent(c.Writer, c.Request, name, fi.ModTime(), f)
			return
		}
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
