package innometrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/innometrics/innometrics-backend/internal/config"
)

const (
	apiTitle   = "Innometrics backend API"
	apiVersion = "1.0.0"
)

type (
	// Document is a Swagger 2.0 description of the API.
	Document struct {
		Swagger             string                          `yaml:"swagger"`
		Info                DocumentInfo                    `yaml:"info"`
		Consumes            []string                        `yaml:"consumes"`
		Produces            []string                        `yaml:"produces"`
		SecurityDefinitions map[string]securityScheme       `yaml:"securityDefinitions"`
		Paths               map[string]map[string]operation `yaml:"paths"`
	}

	// DocumentInfo names the API.
	DocumentInfo struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	}

	securityScheme struct {
		Type string `yaml:"type"`
		In   string `yaml:"in"`
		Name string `yaml:"name"`
	}

	operation struct {
		Summary     string                `yaml:"summary"`
		Description string                `yaml:"description,omitempty"`
		Parameters  []parameter           `yaml:"parameters,omitempty"`
		Responses   map[int]response      `yaml:"responses"`
		Security    []map[string][]string `yaml:"security,omitempty"`
	}

	response struct {
		Description string `yaml:"description"`
	}
)

const tokenSecurity = "token"

// NewDocument describes every registered endpoint.
func NewDocument() *Document {
	doc := &Document{
		Swagger:  "2.0",
		Info:     DocumentInfo{Title: apiTitle, Version: apiVersion},
		Consumes: []string{"multipart/form-data", "application/x-www-form-urlencoded", "application/json"},
		Produces: []string{"application/json"},
		SecurityDefinitions: map[string]securityScheme{
			tokenSecurity: {Type: "apiKey", In: "header", Name: "Authorization"},
		},
		Paths: make(map[string]map[string]operation),
	}

	for _, e := range endpoints {
		op := operation{
			Summary:     e.summary,
			Description: e.description,
			Parameters:  e.parameters,
			Responses:   make(map[int]response, len(e.responses)),
		}

		for status, description := range e.responses {
			op.Responses[status] = response{Description: description}
		}

		if e.authenticated {
			op.Security = []map[string][]string{{tokenSecurity: {}}}
		}

		if doc.Paths[e.path] == nil {
			doc.Paths[e.path] = make(map[string]operation)
		}

		for _, method := range e.methods {
			doc.Paths[e.path][strings.ToLower(method)] = op
		}
	}

	return doc
}

// WriteDocumentation writes the API document as YAML to path, creating its directory.
func WriteDocumentation(path string) error {
	data, err := yaml.Marshal(NewDocument())
	if err != nil {
		return fmt.Errorf("failed to marshal documentation: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create documentation directory: %w", err)
	}

	//nolint:gosec // The document is public.
	if err = os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return fmt.Errorf("failed to write documentation: %w", err)
	}

	return nil
}
