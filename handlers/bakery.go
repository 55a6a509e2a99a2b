package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dorysbakehouse/bakehouse/backend/internal/bakery"
	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
	"github.com/dorysbakehouse/bakehouse/backend/pkg/logger"
)

// BakeryHandler exposes the admin API under /api.
type BakeryHandler struct {
	svc *bakery.Service
	log logger.Component
}

func NewBakeryHandler(svc *bakery.Service) *BakeryHandler {
	return &BakeryHandler{svc: svc, log: logger.For("api")}
}

// Register mounts the collection and singleton routes.
func (h *BakeryHandler) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.DELETE("/products/:id", h.deleteProduct)

	api.GET("/gallery", h.listGallery)
	api.POST("/gallery", h.addGallery)
	api.DELETE("/gallery/:id", h.deleteGallery)

	api.GET("/reviews", h.listReviews)
	api.POST("/reviews", h.createReview)
	api.DELETE("/reviews/:id", h.deleteReview)

	api.GET("/about", h.getAbout)
	api.POST("/about", h.updateAbout)

	api.GET("/today", h.getToday)
	api.POST("/today", h.setToday)
	api.DELETE("/today", h.clearToday)
}

func (h *BakeryHandler) listProducts(c *gin.Context) {
	list, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BakeryHandler) createProduct(c *gin.Context) {
	img, closeImg, err := formImage(c, "image")
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer closeImg()
	if img == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product image required"})
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), bakery.ProductInput{
		Name:        c.PostForm("name"),
		Price:       c.PostForm("price"),
		Description: c.PostForm("description"),
	}, img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *BakeryHandler) deleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product Deleted"})
}

func (h *BakeryHandler) listGallery(c *gin.Context) {
	list, err := h.svc.ListGallery(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BakeryHandler) addGallery(c *gin.Context) {
	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No files uploaded"})
		return
	}

	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		f, src, err := openUpload(fh)
		if err != nil {
			h.respondError(c, err)
			return
		}
		defer src.Close()
		files = append(files, f)
	}

	list, err := h.svc.AddGalleryImages(c.Request.Context(), files)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BakeryHandler) deleteGallery(c *gin.Context) {
	if err := h.svc.DeleteGalleryItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image Deleted"})
}

func (h *BakeryHandler) listReviews(c *gin.Context) {
	list, err := h.svc.ListReviews(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BakeryHandler) createReview(c *gin.Context) {
	var in bakery.ReviewInput
	// an empty body is a review with every field defaulted
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	r, err := h.svc.CreateReview(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "review": r})
}

func (h *BakeryHandler) deleteReview(c *gin.Context) {
	if err := h.svc.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review Deleted"})
}

func (h *BakeryHandler) getAbout(c *gin.Context) {
	raw, err := h.svc.About(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, raw)
}

func (h *BakeryHandler) updateAbout(c *gin.Context) {
	var in bakery.AboutInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	data, err := h.svc.UpdateAbout(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "About Updated", "data": data})
}

func (h *BakeryHandler) getToday(c *gin.Context) {
	raw, err := h.svc.Today(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, raw)
}

func (h *BakeryHandler) setToday(c *gin.Context) {
	img, closeImg, err := formImage(c, "image")
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer closeImg()
	if img == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image required"})
		return
	}
	b, err := h.svc.SetToday(c.Request.Context(), bakery.TodayInput{
		Name:        c.PostForm("name"),
		Ingredients: c.PostForm("ingredients"),
		Description: c.PostForm("description"),
	}, img)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BakeryHandler) clearToday(c *gin.Context) {
	if err := h.svc.ClearToday(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Today Bake Cleared"})
}

// respondError maps service errors to a status code. Anything unexpected is a
// 500 carrying the error text.
func (h *BakeryHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bakery.ErrImageRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image required"})
	case errors.Is(err, bakery.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"message": "No files uploaded"})
	default:
		h.log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// formImage returns the named multipart file, or nil when the request has
// none. The returned func closes the file.
func formImage(c *gin.Context, field string) (*storage.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File[field]) == 0 {
		return nil, func() {}, nil
	}
	f, src, err := openUpload(form.File[field][0])
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s upload: %w", field, err)
	}
	return &f, func() { _ = src.Close() }, nil
}

func openUpload(fh *multipart.FileHeader) (storage.File, multipart.File, error) {
	src, err := fh.Open()
	if err != nil {
		return storage.File{}, nil, err
	}
	return storage.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     src,
	}, src, nil
}
