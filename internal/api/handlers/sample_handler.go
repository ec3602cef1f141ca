// internal/api/handlers/sample_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go-quickstart/internal/captcha"
	"go-quickstart/internal/pdf"

	"github.com/gin-gonic/gin"
)

// SampleHandler serves the starter endpoints: health text, captcha and PDF generation.
type SampleHandler struct {
	Captcha *captcha.Service
	Now     func() time.Time
}

type VerifyCaptchaRequest struct {
	CaptchaID string `json:"captchaId" binding:"required"`
	UserInput string `json:"userInput"`
}

func (h *SampleHandler) Main(c *gin.Context) {
	c.String(http.StatusOK, "Main Route is working ✅")
}

func (h *SampleHandler) Test(c *gin.Context) {
	c.String(http.StatusOK, "This is a test route.")
}

func (h *SampleHandler) GetCaptcha(c *gin.Context) {
	id, image, err := h.Captcha.Generate()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error generating captcha", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"captchaId": id, "image": image})
}

func (h *SampleHandler) VerifyCaptcha(c *gin.Context) {
	var req VerifyCaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "captchaId is required"})
		return
	}
	if h.Captcha.Verify(req.CaptchaID, req.UserInput) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "CAPTCHA verified"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "message": "CAPTCHA incorrect"})
}

// GeneratePDF renders the sample document. The JSON body is optional; missing
// fields fall back to the sample content.
func (h *SampleHandler) GeneratePDF(c *gin.Context) {
	var doc pdf.Document
	if err := c.ShouldBindJSON(&doc); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid PDF request", "error": err.Error()})
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	data, err := pdf.Bytes(doc, now())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error generating PDF", "error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Header("Access-Control-Expose-Headers", "Content-Disposition")
	c.Data(http.StatusOK, "application/pdf", data)
}
