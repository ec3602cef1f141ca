package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsHandler(t *testing.T) {
	h, err := NewDocsHandler()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api-docs", h.JSON)
	r.GET("/api-docs/openapi.yaml", h.YAML)

	w := doJSON(t, r, http.MethodGet, "/api-docs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Contains(t, doc.Paths, "/api/user/register")
	assert.Contains(t, doc.Paths, "/api/maps/stores/nearby")
	assert.Contains(t, doc.Paths, "/api/files/url")

	w = doJSON(t, r, http.MethodGet, "/api-docs/openapi.yaml", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "yaml")
	assert.Equal(t, openAPISpec, w.Body.Bytes())
}

func TestDocsHandlerRejectsBadYAML(t *testing.T) {
	_, err := newDocsHandler([]byte("openapi: [unterminated"))
	assert.Error(t, err)
}
