package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go-quickstart/internal/auth"
	"go-quickstart/internal/excel"
	"go-quickstart/internal/mail"
	"go-quickstart/internal/models"
	"go-quickstart/internal/oauth"
	"go-quickstart/internal/repository"
	"go-quickstart/internal/s3"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	uploaded []string
	deleted  []string
	fail     error
}

func (f *fakeStorage) Upload(_ context.Context, folder, filename, _ string, body io.Reader) (*s3.Object, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	_, _ = io.ReadAll(body)
	key := folder + "/1_" + filename
	f.uploaded = append(f.uploaded, key)
	return &s3.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeRevoker struct {
	revoked map[string]time.Time
}

func (f *fakeRevoker) Revoke(_ context.Context, id string, exp time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[id] = exp
	return nil
}

type userFixture struct {
	repo    *repository.MockUserRepository
	mailer  *mail.MockMailer
	storage *fakeStorage
	revoker *fakeRevoker
	tokens  *auth.TokenManager
	svc     *UserService
}

func newUserFixture(t *testing.T) *userFixture {
	ctrl := gomock.NewController(t)
	f := &userFixture{
		repo:    repository.NewMockUserRepository(ctrl),
		mailer:  mail.NewMockMailer(ctrl),
		storage: &fakeStorage{},
		revoker: &fakeRevoker{},
		tokens:  auth.NewTokenManager("test-secret", time.Hour),
	}
	f.svc = NewUserService(f.repo, f.tokens, f.mailer, f.storage, f.revoker, nil)
	f.svc.now = func() time.Time { return time.Date(2025, 7, 22, 10, 0, 0, 0, time.UTC) }
	return f
}

func hashed(t *testing.T, pw string) string {
	h, err := auth.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func assignID(_ context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	return nil
}

func TestRegister(t *testing.T) {
	input := RegisterInput{Name: "Asha", Email: " Asha@Example.com ", Password: "secret"}

	tests := []struct {
		name      string
		in        RegisterInput
		photo     bool
		setup     func(f *userFixture)
		wantErr   error
		wantStore int
		wantDel   int
	}{
		{
			name: "creates user with photo",
			in:   input,
			setup: func(f *userFixture) {
				f.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, repository.ErrNotFound)
				f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(assignID)
			},
			photo:     true,
			wantStore: 1,
		},
		{
			name: "existing email",
			in:   input,
			setup: func(f *userFixture) {
				f.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(&models.User{}, nil)
			},
			wantErr: ErrUserExists,
		},
		{
			name: "duplicate key on insert",
			in:   input,
			setup: func(f *userFixture) {
				f.repo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrNotFound)
				f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicate)
			},
			photo:     true,
			wantErr:   ErrUserExists,
			wantStore: 1,
			wantDel:   1,
		},
		{
			name:    "missing password",
			in:      RegisterInput{Name: "Asha", Email: "a@example.com"},
			setup:   func(f *userFixture) {},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t)
			tt.setup(f)

			var photo *Upload
			if tt.photo {
				photo = &Upload{Filename: "me.png", ContentType: "image/png", Body: strings.NewReader("png")}
			}
			user, err := f.svc.Register(context.Background(), tt.in, photo)

			assert.Len(t, f.storage.uploaded, tt.wantStore)
			assert.Len(t, f.storage.deleted, tt.wantDel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "asha@example.com", user.Email)
			assert.Equal(t, models.RoleUser, user.Role)
			assert.True(t, user.IsActive)
			assert.True(t, auth.CheckPasswordHash("secret", user.Password))
			assert.Equal(t, "ProfilePhoto/1_me.png", user.PhotoKey())
		})
	}
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Role: models.RoleAdmin}

	t.Run("unknown email", func(t *testing.T) {
		f := newUserFixture(t)
		f.repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(nil, repository.ErrNotFound)
		_, _, err := f.svc.Login(context.Background(), "a@example.com", "pw")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newUserFixture(t)
		u := *user
		u.Password = hashed(t, "right")
		f.repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(&u, nil)
		_, _, err := f.svc.Login(context.Background(), "a@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("issues token", func(t *testing.T) {
		f := newUserFixture(t)
		u := *user
		u.Password = hashed(t, "right")
		f.repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(&u, nil)

		token, got, err := f.svc.Login(context.Background(), "A@example.com", "right")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		claims, err := f.tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID.Hex(), claims.UserID)
		assert.Equal(t, models.RoleAdmin, claims.Role)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newUserFixture(t)
	exp := time.Now().Add(time.Hour)
	claims := &auth.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(exp)}}

	require.NoError(t, f.svc.Logout(context.Background(), claims))
	assert.WithinDuration(t, exp, f.revoker.revoked["jti-1"], time.Second)
}

func TestForgotPassword(t *testing.T) {
	f := newUserFixture(t)
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com"}

	var stored string
	f.repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(user, nil)
	f.repo.EXPECT().SetOTP(gomock.Any(), user.ID, gomock.Any(), f.svc.now().Add(auth.OTPTTL)).
		DoAndReturn(func(_ context.Context, _ primitive.ObjectID, otp string, _ time.Time) error {
			stored = otp
			return nil
		})
	f.mailer.EXPECT().SendOTP("a@example.com", gomock.Any()).
		DoAndReturn(func(_, otp string) error {
			assert.Equal(t, stored, otp)
			return nil
		})

	require.NoError(t, f.svc.ForgotPassword(context.Background(), "a@example.com"))
	assert.Len(t, stored, 6)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	f := newUserFixture(t)
	f.repo.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrNotFound)
	assert.ErrorIs(t, f.svc.ForgotPassword(context.Background(), "x@example.com"), ErrUserNotFound)
}

func TestResetPassword(t *testing.T) {
	now := time.Date(2025, 7, 22, 10, 0, 0, 0, time.UTC)
	valid := now.Add(time.Minute)
	expired := now.Add(-time.Minute)

	tests := []struct {
		name    string
		otp     string
		expires *time.Time
		wantErr error
	}{
		{name: "valid otp", otp: "123456", expires: &valid},
		{name: "wrong otp", otp: "000000", expires: &valid, wantErr: ErrInvalidOTP},
		{name: "expired otp", otp: "123456", expires: &expired, wantErr: ErrInvalidOTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t)
			user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", OTP: "123456", OTPExpires: tt.expires}
			f.repo.EXPECT().FindByEmail(gomock.Any(), "a@example.com").Return(user, nil)
			if tt.wantErr == nil {
				f.repo.EXPECT().ResetPassword(gomock.Any(), user.ID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ primitive.ObjectID, hash string) error {
						assert.True(t, auth.CheckPasswordHash("new-pass", hash))
						return nil
					})
			}

			err := f.svc.ResetPassword(context.Background(), "a@example.com", tt.otp, "new-pass")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetInvalidID(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestUpdate(t *testing.T) {
	id := primitive.NewObjectID()
	existing := &models.User{
		ID:           id,
		Email:        "old@example.com",
		ProfilePhoto: []models.Photo{{PublicID: "ProfilePhoto/old.png", URL: "u"}},
	}
	str := func(s string) *string { return &s }

	t.Run("email already in use", func(t *testing.T) {
		f := newUserFixture(t)
		f.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		f.repo.EXPECT().FindByEmail(gomock.Any(), "taken@example.com").Return(&models.User{}, nil)

		_, err := f.svc.Update(context.Background(), id.Hex(), UpdateInput{Email: str("taken@example.com")}, nil)
		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("replaces photo and skips empty fields", func(t *testing.T) {
		f := newUserFixture(t)
		active := false
		f.repo.EXPECT().FindByID(gomock.Any(), id).Return(existing, nil)
		f.repo.EXPECT().Update(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ primitive.ObjectID, u repository.UserUpdate) (*models.User, error) {
				assert.Equal(t, "New Name", *u.Name)
				assert.Nil(t, u.Phone)
				assert.Nil(t, u.Email)
				assert.False(t, *u.IsActive)
				require.Len(t, u.ProfilePhoto, 1)
				return &models.User{ID: id, Name: *u.Name, ProfilePhoto: u.ProfilePhoto}, nil
			})

		photo := &Upload{Filename: "new.png", Body: strings.NewReader("x")}
		in := UpdateInput{Name: str("New Name"), Phone: str(" "), Email: str("OLD@example.com"), IsActive: &active}
		got, err := f.svc.Update(context.Background(), id.Hex(), in, photo)
		require.NoError(t, err)
		assert.Equal(t, "ProfilePhoto/1_new.png", got.PhotoKey())
		assert.Equal(t, []string{"ProfilePhoto/old.png"}, f.storage.deleted)
	})

	t.Run("not found", func(t *testing.T) {
		f := newUserFixture(t)
		f.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, repository.ErrNotFound)
		_, err := f.svc.Update(context.Background(), id.Hex(), UpdateInput{}, nil)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDelete(t *testing.T) {
	id := primitive.NewObjectID()

	f := newUserFixture(t)
	f.repo.EXPECT().Delete(gomock.Any(), id).Return(&models.User{ProfilePhoto: []models.Photo{{PublicID: "k"}}}, nil)
	require.NoError(t, f.svc.Delete(context.Background(), id.Hex()))
	assert.Equal(t, []string{"k"}, f.storage.deleted)

	f = newUserFixture(t)
	f.repo.EXPECT().Delete(gomock.Any(), id).Return(nil, repository.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), id.Hex()), ErrUserNotFound)
}

func TestImportExcel(t *testing.T) {
	data, err := excel.UsersBytes([]models.User{
		{Name: "New", Email: "new@example.com", Role: "user"},
		{Name: "Old", Email: "old@example.com", Role: "admin", IsAdmin: true},
		{Name: "NoEmail"},
	})
	require.NoError(t, err)

	f := newUserFixture(t)
	f.repo.EXPECT().FindByEmail(gomock.Any(), "new@example.com").Return(nil, repository.ErrNotFound)
	f.repo.EXPECT().FindByEmail(gomock.Any(), "old@example.com").Return(&models.User{}, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(assignID)

	res, err := f.svc.ImportExcel(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, []string{"old@example.com"}, res.SkippedUsers)
	assert.Equal(t, "New", res.InsertedUsers[0].Name)
	assert.True(t, res.InsertedUsers[0].IsActive)
}

func TestImportExcelRejectsGarbage(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.ImportExcel(context.Background(), strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMailExport(t *testing.T) {
	f := newUserFixture(t)
	f.repo.EXPECT().List(gomock.Any()).Return([]models.User{{Name: "A", Email: "a@example.com"}}, nil)
	f.mailer.EXPECT().SendWithAttachment("ops@example.com", "Users export", gomock.Any(), gomock.Any(), "users.xlsx").Return(nil)

	require.NoError(t, f.svc.MailExport(context.Background(), "ops@example.com"))
}

func TestLoginWithProvider(t *testing.T) {
	profile := &oauth.Profile{ID: "g-1", Name: "Asha", Email: "asha@example.com", Photo: "https://img/1"}

	t.Run("known provider id", func(t *testing.T) {
		f := newUserFixture(t)
		user := &models.User{ID: primitive.NewObjectID(), GoogleID: "g-1"}
		f.repo.EXPECT().FindByProvider(gomock.Any(), "googleId", "g-1").Return(user, nil)

		token, got, err := f.svc.LoginWithProvider(context.Background(), "googleId", profile)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("links existing email", func(t *testing.T) {
		f := newUserFixture(t)
		user := &models.User{ID: primitive.NewObjectID(), Email: "asha@example.com"}
		f.repo.EXPECT().FindByProvider(gomock.Any(), "googleId", "g-1").Return(nil, repository.ErrNotFound)
		f.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(user, nil)
		f.repo.EXPECT().LinkProvider(gomock.Any(), user.ID, "googleId", "g-1").Return(nil)

		_, got, err := f.svc.LoginWithProvider(context.Background(), "googleId", profile)
		require.NoError(t, err)
		assert.Equal(t, "g-1", got.GoogleID)
	})

	t.Run("creates new user", func(t *testing.T) {
		f := newUserFixture(t)
		f.repo.EXPECT().FindByProvider(gomock.Any(), "githubId", "g-1").Return(nil, repository.ErrNotFound)
		f.repo.EXPECT().FindByEmail(gomock.Any(), "asha@example.com").Return(nil, repository.ErrNotFound)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(assignID)

		_, got, err := f.svc.LoginWithProvider(context.Background(), "githubId", profile)
		require.NoError(t, err)
		assert.Equal(t, "g-1", got.GitHubID)
		assert.Equal(t, models.RoleUser, got.Role)
		assert.False(t, got.IsAdmin)
		assert.Equal(t, []models.Photo{{PublicID: "", URL: "https://img/1"}}, got.ProfilePhoto)
	})

	t.Run("no email", func(t *testing.T) {
		f := newUserFixture(t)
		f.repo.EXPECT().FindByProvider(gomock.Any(), "facebookId", "fb").Return(nil, repository.ErrNotFound)

		_, _, err := f.svc.LoginWithProvider(context.Background(), "facebookId", &oauth.Profile{ID: "fb"})
		assert.ErrorIs(t, err, ErrEmailRequired)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newUserFixture(t)
		boom := errors.New("boom")
		f.repo.EXPECT().FindByProvider(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

		_, _, err := f.svc.LoginWithProvider(context.Background(), "googleId", profile)
		assert.ErrorIs(t, err, boom)
	})
}

func TestPurgeExpiredOTPs(t *testing.T) {
	f := newUserFixture(t)
	f.repo.EXPECT().ClearExpiredOTPs(gomock.Any(), f.svc.now()).Return(int64(3), nil)

	n, err := f.svc.PurgeExpiredOTPs(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
