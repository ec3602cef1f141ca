// internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go-quickstart/internal/api/middleware"
	"go-quickstart/internal/excel"
	"go-quickstart/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users *service.UserService
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formFile opens an optional multipart file. The returned close func is never nil.
func formFile(c *gin.Context, field string) (*service.Upload, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, nil
	}
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
	}, func() { f.Close() }, nil
}

// Register creates a user from JSON or multipart form data with an optional profilePhoto.
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	photo, closeFile, err := formFile(c, "profilePhoto")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile photo", "error": err.Error()})
		return
	}
	defer closeFile()

	user, err := h.Users.Register(c.Request.Context(), req, photo)
	if err != nil {
		respondUser(c, err, "Error registering User")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered", "user": user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required", "error": err.Error()})
		return
	}

	token, user, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUser(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Users.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		respondUser(c, err, "Logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required", "error": err.Error()})
		return
	}
	if err := h.Users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondUser(c, err, "Error sending OTP")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "OTP sent to email"})
}

func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and otp are required", "error": err.Error()})
		return
	}
	if err := h.Users.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondUser(c, err, "OTP verification failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "OTP verified"})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email, otp and newPassword are required", "error": err.Error()})
		return
	}
	if err := h.Users.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondUser(c, err, "Password reset failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Password reset successful"})
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondUser(c, err, "Error fetching Users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondUser(c, err, "Error fetching User")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update; fields absent from the request are left unchanged.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateInput
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	photo, closeFile, err := formFile(c, "profilePhoto")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile photo", "error": err.Error()})
		return
	}
	defer closeFile()

	user, err := h.Users.Update(c.Request.Context(), c.Param("id"), req, photo)
	if err != nil {
		respondUser(c, err, "Error updating User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondUser(c, err, "Error deleting User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UserHandler) ExportExcel(c *gin.Context) {
	data, err := h.Users.ExportExcel(c.Request.Context())
	if err != nil {
		respondUser(c, err, "Error exporting users")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="users.xlsx"`)
	c.Data(http.StatusOK, excel.ContentType, data)
}

// EmailExport mails the users workbook to the given address.
func (h *UserHandler) EmailExport(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required", "error": err.Error()})
		return
	}
	if err := h.Users.MailExport(c.Request.Context(), req.Email); err != nil {
		respondUser(c, err, "Error emailing users export")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Users export sent"})
}

func (h *UserHandler) ImportExcel(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please upload an Excel file"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please upload an Excel file", "error": err.Error()})
		return
	}
	defer f.Close()

	result, err := h.Users.ImportExcel(c.Request.Context(), f)
	if err != nil {
		respondUser(c, err, "Error importing users")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Users imported successfully",
		"insertedCount": result.InsertedCount,
		"skippedCount":  result.SkippedCount,
		"skippedUsers":  result.SkippedUsers,
		"insertedUsers": result.InsertedUsers,
	})
}
