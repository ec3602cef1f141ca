// Package captcha issues and checks image captchas.
package captcha

import (
	"fmt"
	"strings"

	"github.com/mojocn/base64Captcha"
)

const (
	width    = 240
	height   = 80
	length   = 5
	maxSkew  = 0.7
	dotCount = 80
)

type Service struct {
	captcha *base64Captcha.Captcha
}

// New builds a digit captcha backed by store.
func New(store base64Captcha.Store) *Service {
	driver := base64Captcha.NewDriverDigit(height, width, length, maxSkew, dotCount)
	return &Service{captcha: base64Captcha.NewCaptcha(driver, store)}
}

// Generate returns the captcha id and a base64 PNG data URI.
func (s *Service) Generate() (id, image string, err error) {
	id, image, _, err = s.captcha.Generate()
	if err != nil {
		return "", "", fmt.Errorf("generate captcha: %w", err)
	}
	return id, image, nil
}

// Verify checks an answer. The stored answer is consumed either way.
func (s *Service) Verify(id, answer string) bool {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(answer) == "" {
		return false
	}
	return s.captcha.Verify(id, answer, true)
}
