// Package oauth implements the Google, GitHub and Facebook authorization code flows.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-quickstart/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var (
	ErrUnknownProvider = errors.New("unknown or unconfigured provider")
	ErrExchange        = errors.New("oauth code exchange failed")
)

// Profile is the identity a provider returns after login.
type Profile struct {
	ID    string
	Name  string
	Email string
	Photo string
}

// ProfileFetcher loads the logged-in account using an authorized client.
type ProfileFetcher func(ctx context.Context, client *http.Client, apiBase string) (*Profile, error)

type Provider struct {
	Name string
	// Field is the user document field that stores this provider's account id.
	Field   string
	Config  *oauth2.Config
	APIBase string
	fetch   ProfileFetcher
}

// NewProvider builds a provider outside the built-in set, e.g. a self-hosted identity server.
func NewProvider(name, field string, cfg *oauth2.Config, apiBase string, fetch ProfileFetcher) *Provider {
	return &Provider{Name: strings.ToLower(name), Field: field, Config: cfg, APIBase: apiBase, fetch: fetch}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and loads the user's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	profile, err := p.fetch(ctx, p.Config.Client(ctx, tok), p.APIBase)
	if err != nil {
		return nil, fmt.Errorf("%s profile: %w", p.Name, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%s profile: missing account id", p.Name)
	}
	return profile, nil
}

type Registry struct {
	providers map[string]*Provider
}

// NewRegistry registers every provider that has credentials configured.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	r := &Registry{providers: map[string]*Provider{}}
	if cfg.Google.Enabled() {
		r.Add(&Provider{
			Name:    "google",
			Field:   "googleId",
			Config:  clientConfig(cfg.Google, endpoints.Google, "openid", "profile", "email"),
			APIBase: "https://www.googleapis.com",
			fetch:   fetchGoogle,
		})
	}
	if cfg.GitHub.Enabled() {
		r.Add(&Provider{
			Name:    "github",
			Field:   "githubId",
			Config:  clientConfig(cfg.GitHub, endpoints.GitHub, "read:user", "user:email"),
			APIBase: "https://api.github.com",
			fetch:   fetchGitHub,
		})
	}
	if cfg.Facebook.Enabled() {
		r.Add(&Provider{
			Name:    "facebook",
			Field:   "facebookId",
			Config:  clientConfig(cfg.Facebook, endpoints.Facebook, "email", "public_profile"),
			APIBase: "https://graph.facebook.com",
			fetch:   fetchFacebook,
		})
	}
	return r
}

func clientConfig(c config.OAuthClientConfig, ep oauth2.Endpoint, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     ep,
		Scopes:       scopes,
	}
}

func (r *Registry) Add(p *Provider) {
	r.providers[p.Name] = p
}

func (r *Registry) Get(name string) (*Provider, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	return names
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
