// internal/api/handlers/oauth_handler.go
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"go-quickstart/internal/oauth"
	"go-quickstart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 600
)

type OAuthHandler struct {
	Providers *oauth.Registry
	Users     *service.UserService
	// FrontendURL, when set, receives the token at /auth/callback instead of a JSON body.
	FrontendURL  string
	SecureCookie bool
}

func (h *OAuthHandler) provider(c *gin.Context) (*oauth.Provider, bool) {
	p, err := h.Providers.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Unknown provider", "error": err.Error()})
		return nil, false
	}
	return p, true
}

// Begin redirects to the provider's consent screen.
func (h *OAuthHandler) Begin(c *gin.Context) {
	p, ok := h.provider(c)
	if !ok {
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", h.SecureCookie, true)
	c.Redirect(http.StatusFound, p.AuthCodeURL(state))
}

// Callback finishes the code flow and logs the user in, creating or linking the account.
func (h *OAuthHandler) Callback(c *gin.Context) {
	p, ok := h.provider(c)
	if !ok {
		return
	}

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OAuth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.SecureCookie, true)

	if errParam := c.Query("error"); errParam != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "OAuth login was cancelled", "error": errParam})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing authorization code"})
		return
	}

	profile, err := p.Exchange(c.Request.Context(), code)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "OAuth login failed", "error": err.Error()})
		return
	}

	token, user, err := h.Users.LoginWithProvider(c.Request.Context(), p.Field, profile)
	if err != nil {
		respondUser(c, err, "OAuth login failed")
		return
	}

	if h.FrontendURL != "" {
		target := strings.TrimRight(h.FrontendURL, "/") + "/auth/callback?token=" + url.QueryEscape(token)
		c.Redirect(http.StatusFound, target)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": strings.ToUpper(p.Name[:1]) + p.Name[1:] + " Login successful",
		"token":   token,
		"user":    user,
	})
}
