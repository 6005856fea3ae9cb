package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// UploadHandler stores profile pictures in the blob store.
type UploadHandler struct {
	store    storage.BlobStore
	maxBytes int64
}

// NewUploadHandler accepts a nil store; uploads then answer 503.
func NewUploadHandler(store storage.BlobStore, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

func (h *UploadHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
}

// Upload accepts a multipart "file" image and returns {url, publicId}.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if fh.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if !storage.IsImage(fh.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are allowed"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	// the stored type comes from the bytes, not the part header
	head := make([]byte, storage.SniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondError(c, err)
		return
	}
	contentType, ok := storage.SniffImage(head[:n])
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are allowed"})
		return
	}
	body := io.MultiReader(bytes.NewReader(head[:n]), f)

	key := storage.AvatarKey(middleware.UserID(c), fh.Filename, contentType)
	obj, err := h.store.Put(c.Request.Context(), key, body, fh.Size, contentType)
	if err != nil {
		logger.Errorf("upload %s: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": obj.URL, "publicId": obj.Key, "resourceType": "image"})
}
