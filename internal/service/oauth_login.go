// internal/service/oauth_login.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go-quickstart/internal/models"
	"go-quickstart/internal/oauth"
	"go-quickstart/internal/repository"

	"go.uber.org/zap"
)

// LoginWithProvider resolves an OAuth profile to a local user and issues a token.
// Lookup is by provider id first, then by email; a match on email links the provider id.
func (s *UserService) LoginWithProvider(ctx context.Context, field string, profile *oauth.Profile) (string, *models.User, error) {
	user, err := s.repo.FindByProvider(ctx, field, profile.ID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.linkOrCreate(ctx, field, profile)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

func (s *UserService) linkOrCreate(ctx context.Context, field string, profile *oauth.Profile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if err := s.repo.LinkProvider(ctx, existing.ID, field, profile.ID); err != nil {
			return nil, err
		}
		setProviderID(existing, field, profile.ID)
		s.log.Info("linked oauth provider", zap.String("field", field), zap.String("user_id", existing.ID.Hex()))
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Name:         profile.Name,
		Email:        email,
		Role:         models.RoleUser,
		IsActive:     true,
		ProfilePhoto: []models.Photo{},
		CreatedAt:    s.now(),
	}
	if user.Name == "" {
		user.Name = email
	}
	if profile.Photo != "" {
		user.ProfilePhoto = []models.Photo{{URL: profile.Photo}}
	}
	setProviderID(user, field, profile.ID)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func setProviderID(u *models.User, field, id string) {
	switch field {
	case "googleId":
		u.GoogleID = id
	case "githubId":
		u.GitHubID = id
	case "facebookId":
		u.FacebookID = id
	case "appleId":
		u.AppleID = id
	}
}
