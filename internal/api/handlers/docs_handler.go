// internal/api/handlers/docs_handler.go
package handlers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// DocsHandler serves the bundled OpenAPI description.
type DocsHandler struct {
	raw  []byte
	json []byte
}

// NewDocsHandler parses the embedded description once so both forms are ready to serve.
func NewDocsHandler() (*DocsHandler, error) {
	return newDocsHandler(openAPISpec)
}

func newDocsHandler(raw []byte) (*DocsHandler, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return &DocsHandler{raw: raw, json: data}, nil
}

func (h *DocsHandler) JSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.json)
}

func (h *DocsHandler) YAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", h.raw)
}
