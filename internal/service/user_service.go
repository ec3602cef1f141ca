// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-quickstart/internal/auth"
	"go-quickstart/internal/excel"
	"go-quickstart/internal/mail"
	"go-quickstart/internal/models"
	"go-quickstart/internal/repository"
	"go-quickstart/internal/s3"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const ProfilePhotoFolder = "ProfilePhoto"

// Storage is the object store used for profile photos. *s3.Uploader satisfies it.
type Storage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*s3.Object, error)
	Delete(ctx context.Context, key string) error
}

// TokenRevoker blacklists token ids. *cache.Cache satisfies it.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Upload is a file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type RegisterInput struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Phone    string `json:"phone" form:"phone"`
	Role     string `json:"role" form:"role"`
	IsAdmin  bool   `json:"isAdmin" form:"isAdmin"`
}

// UpdateInput is a partial update. Nil pointers leave the field alone.
type UpdateInput struct {
	Name       *string `json:"name" form:"name"`
	Phone      *string `json:"phone" form:"phone"`
	Password   *string `json:"password" form:"password"`
	Email      *string `json:"email" form:"email"`
	Role       *string `json:"role" form:"role"`
	Department *string `json:"department" form:"department"`
	IsActive   *bool   `json:"isActive" form:"isActive"`
	IsAdmin    *bool   `json:"isAdmin" form:"isAdmin"`
}

type ImportResult struct {
	InsertedCount int           `json:"insertedCount"`
	SkippedCount  int           `json:"skippedCount"`
	SkippedUsers  []string      `json:"skippedUsers"`
	InsertedUsers []models.User `json:"insertedUsers"`
}

type UserService struct {
	repo    repository.UserRepository
	tokens  *auth.TokenManager
	mailer  mail.Mailer
	storage Storage
	revoker TokenRevoker
	log     *zap.Logger
	now     func() time.Time
}

// NewUserService wires the user workflows. storage and revoker may be nil.
func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, mailer mail.Mailer, storage Storage, revoker TokenRevoker, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		repo:    repo,
		tokens:  tokens,
		mailer:  mailer,
		storage: storage,
		revoker: revoker,
		log:     log,
		now:     time.Now,
	}
}

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) uploadPhoto(ctx context.Context, photo *Upload) (*models.Photo, error) {
	if photo == nil {
		return nil, nil
	}
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	obj, err := s.storage.Upload(ctx, ProfilePhotoFolder, photo.Filename, photo.ContentType, photo.Body)
	if err != nil {
		return nil, err
	}
	return &models.Photo{PublicID: obj.Key, URL: obj.URL}, nil
}

// deletePhoto removes an S3 object, logging rather than failing.
func (s *UserService) deletePhoto(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("could not delete S3 object", zap.String("key", key), zap.Error(err))
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput, photo *Upload) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Password:     hashed,
		Phone:        in.Phone,
		Role:         in.Role,
		IsAdmin:      in.IsAdmin,
		IsActive:     true,
		ProfilePhoto: []models.Photo{},
		CreatedAt:    s.now(),
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	uploaded, err := s.uploadPhoto(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("upload profile photo: %w", err)
	}
	if uploaded != nil {
		user.ProfilePhoto = []models.Photo{*uploaded}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if uploaded != nil {
			s.deletePhoto(ctx, uploaded.PublicID)
		}
		// The unique email index settles concurrent registrations.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}
	if user.Password == "" || !auth.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *auth.JWTClaims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// ForgotPassword stores a fresh OTP on the user and emails it.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, user.ID, otp, s.now().Add(auth.OTPTTL)); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.mailer.SendOTP(user.Email, otp); err != nil {
		return err
	}
	s.log.Info("password reset otp sent", zap.String("user_id", user.ID.Hex()))
	return nil
}

func (s *UserService) checkOTP(ctx context.Context, email, otp string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}
	if !user.OTPValid(strings.TrimSpace(otp), s.now()) {
		return nil, ErrInvalidOTP
	}
	return user, nil
}

func (s *UserService) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := s.checkOTP(ctx, email, otp)
	return err
}

// ResetPassword sets a new password when the OTP checks out and clears the OTP.
func (s *UserService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: newPassword is required", ErrValidation)
	}
	user, err := s.checkOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.ResetPassword(ctx, user.ID, hashed)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func nonEmpty(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return p
}

// Update applies a partial update. A new photo replaces the old one, whose object is
// deleted on a best-effort basis.
func (s *UserService) Update(ctx context.Context, id string, in UpdateInput, photo *Upload) (*models.User, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	update := repository.UserUpdate{
		Name:       nonEmpty(in.Name),
		Phone:      nonEmpty(in.Phone),
		Role:       nonEmpty(in.Role),
		Department: nonEmpty(in.Department),
		IsActive:   in.IsActive,
		IsAdmin:    in.IsAdmin,
	}

	if email := nonEmpty(in.Email); email != nil {
		normalized := normalizeEmail(*email)
		if normalized != existing.Email {
			if _, err := s.repo.FindByEmail(ctx, normalized); err == nil {
				return nil, ErrEmailInUse
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			update.Email = &normalized
		}
	}

	if pw := nonEmpty(in.Password); pw != nil {
		hashed, err := auth.HashPassword(*pw)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.Password = &hashed
	}

	uploaded, err := s.uploadPhoto(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("upload profile photo: %w", err)
	}
	if uploaded != nil {
		update.ProfilePhoto = []models.Photo{*uploaded}
	}

	updated, err := s.repo.Update(ctx, oid, update)
	if err != nil {
		if uploaded != nil {
			s.deletePhoto(ctx, uploaded.PublicID)
		}
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailInUse
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if uploaded != nil {
		s.deletePhoto(ctx, existing.PhotoKey())
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.deletePhoto(ctx, deleted.PhotoKey())
	return nil
}

// ExportExcel renders every user into an xlsx workbook.
func (s *UserService) ExportExcel(ctx context.Context) ([]byte, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return excel.UsersBytes(users)
}

// MailExport sends the users workbook to an address as an attachment.
func (s *UserService) MailExport(ctx context.Context, to string) error {
	to = normalizeEmail(to)
	if to == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	data, err := s.ExportExcel(ctx)
	if err != nil {
		return err
	}
	return s.mailer.SendWithAttachment(to, "Users export", "The users export is attached.", data, "users.xlsx")
}

// ImportExcel inserts users from a workbook. Rows without an email are ignored and
// existing emails are reported as skipped.
func (s *UserService) ImportExcel(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := excel.ParseUsers(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	result := &ImportResult{SkippedUsers: []string{}, InsertedUsers: []models.User{}}
	for _, row := range rows {
		row.Email = normalizeEmail(row.Email)
		if row.Email == "" {
			continue
		}
		if _, err := s.repo.FindByEmail(ctx, row.Email); err == nil {
			result.SkippedUsers = append(result.SkippedUsers, row.Email)
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		user := row.User()
		user.CreatedAt = s.now()
		if err := s.repo.Create(ctx, &user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.SkippedUsers = append(result.SkippedUsers, row.Email)
				continue
			}
			return nil, err
		}
		result.InsertedUsers = append(result.InsertedUsers, user)
	}
	result.InsertedCount = len(result.InsertedUsers)
	result.SkippedCount = len(result.SkippedUsers)
	return result, nil
}

// PurgeExpiredOTPs clears OTP fields that have expired.
func (s *UserService) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	return s.repo.ClearExpiredOTPs(ctx, s.now())
}
