// internal/api/handlers/file_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-quickstart/internal/service"

	"github.com/gin-gonic/gin"
)

// FileHandler exposes generic S3 uploads, presigned downloads and admin housekeeping.
type FileHandler struct {
	Files *service.FileService
}

// Upload stores every multipart "files" part and returns their keys and URLs.
func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "multipart form with files is required"})
		return
	}
	headers := form.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respondUser(c, err, "Error uploading files")
			return
		}
		defer f.Close()
		uploads = append(uploads, service.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	objs, err := h.Files.Upload(c.Request.Context(), uploads)
	if err != nil {
		respondUser(c, err, "Error uploading files")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Files uploaded", "files": objs})
}

// URL presigns a download link for ?key=, valid for ?expires= seconds (default one hour).
func (h *FileHandler) URL(c *gin.Context) {
	var ttl time.Duration
	if raw := c.Query("expires"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			respondUser(c, fmt.Errorf("%w: expires must be a positive number of seconds", service.ErrValidation), "")
			return
		}
		ttl = time.Duration(secs) * time.Second
	}
	url, err := h.Files.URL(c.Request.Context(), c.Query("key"), ttl)
	if err != nil {
		respondUser(c, err, "Error creating download URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// List returns object keys under ?prefix=.
func (h *FileHandler) List(c *gin.Context) {
	keys, err := h.Files.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		respondUser(c, err, "Error listing files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

type deleteFilesRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

// Delete removes the keys named in the JSON body.
func (h *FileHandler) Delete(c *gin.Context) {
	var req deleteFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "keys are required"})
		return
	}
	n, err := h.Files.Delete(c.Request.Context(), req.Keys)
	if err != nil {
		respondUser(c, err, "Error deleting files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Files deleted", "deleted": n})
}
