package handlers

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
)

// RegisterPages serves the landing page, the admin page and any other file
// found in publicDir. Unknown paths get a JSON 404.
func RegisterPages(r *gin.Engine, publicDir string) {
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(publicDir, "index.html"))
	})
	r.GET("/admin", func(c *gin.Context) {
		c.File(filepath.Join(publicDir, "admin.html"))
	})

	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			name := filepath.Join(publicDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
			if st, err := os.Stat(name); err == nil && !st.IsDir() {
				c.File(name)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// RegisterUploads serves stored uploads under storage.URLPrefix when the
// backend keeps them itself. Cloudinary URLs point at the CDN directly, so
// nothing is registered for it.
func RegisterUploads(r *gin.Engine, u storage.Uploader) {
	switch b := storage.Unwrap(u).(type) {
	case *storage.LocalStorage:
		r.Static(storage.URLPrefix, b.Root())
	case storage.ObjectReader:
		r.GET(storage.URLPrefix+"/*key", func(c *gin.Context) {
			key := strings.TrimPrefix(c.Param("key"), "/")
			rc, info, err := b.Open(c.Request.Context(), key)
			if errors.Is(err, storage.ErrObjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			defer rc.Close()
			c.DataFromReader(http.StatusOK, info.Size, info.ContentType, rc, nil)
		})
	}
}
