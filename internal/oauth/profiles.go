// internal/oauth/profiles.go
package oauth

import (
	"context"
	"net/http"
	"strconv"
)

func fetchGoogle(ctx context.Context, client *http.Client, apiBase string) (*Profile, error) {
	var info struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Picture       string `json:"picture"`
	}
	if err := getJSON(ctx, client, apiBase+"/oauth2/v3/userinfo", &info); err != nil {
		return nil, err
	}
	p := &Profile{ID: info.Sub, Name: info.Name, Photo: info.Picture}
	// Unverified addresses must never be used to link an existing account.
	if info.EmailVerified {
		p.Email = info.Email
	}
	return p, nil
}

func fetchGitHub(ctx context.Context, client *http.Client, apiBase string) (*Profile, error) {
	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, apiBase+"/user", &user); err != nil {
		return nil, err
	}

	p := &Profile{Name: user.Name, Email: user.Email, Photo: user.AvatarURL}
	if user.ID != 0 {
		p.ID = strconv.FormatInt(user.ID, 10)
	}
	if p.Name == "" {
		p.Name = user.Login
	}

	// GitHub only shows verified addresses publicly. Private ones come from /user/emails,
	// where only verified entries count.
	if p.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, apiBase+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if !e.Verified {
				continue
			}
			if e.Primary {
				p.Email = e.Email
				break
			}
			if p.Email == "" {
				p.Email = e.Email
			}
		}
	}
	return p, nil
}

func fetchFacebook(ctx context.Context, client *http.Client, apiBase string) (*Profile, error) {
	var me struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := getJSON(ctx, client, apiBase+"/me?fields=id,name,email,picture", &me); err != nil {
		return nil, err
	}
	return &Profile{ID: me.ID, Name: me.Name, Email: me.Email, Photo: me.Picture.Data.URL}, nil
}
