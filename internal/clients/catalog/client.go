// Package catalog fetches per-class spell catalogs from static data files
package catalog

//go:generate mockgen -destination=mock/mock_source.go -package=catalogmock github.com/KirkDiggler/spell-planner/internal/clients/catalog Source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

// maxCatalogBytes bounds a single class file
const maxCatalogBytes = 8 << 20

// Source loads the catalog document of one class
type Source interface {
	// FetchClass returns the catalog stored under the lower-cased class name.
	// Returns errors.NotFound when the class file does not exist
	// Returns errors.Unavailable for transport failures
	// Returns errors.DataLoss for malformed documents
	FetchClass(ctx context.Context, className string) (*entities.ClassCatalog, error)
}

// HTTPConfig contains configuration options for the HTTP source.
type HTTPConfig struct {
	// BaseURL is the directory the class files are served from
	BaseURL string
	// HTTPTimeout for requests (optional, defaults to 10 seconds)
	HTTPTimeout time.Duration
	// HTTPClient overrides the default client (optional)
	HTTPClient *http.Client
}

// Validate validates the HTTPConfig and sets defaults if not provided.
func (cfg *HTTPConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return errors.InvalidArgument("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "base URL is invalid")
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	return nil
}

type httpSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a source that issues GET <BaseURL>/<class>.json
func NewHTTP(cfg *HTTPConfig) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &httpSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + "/",
		client:  client,
	}, nil
}

func (s *httpSource) FetchClass(ctx context.Context, className string) (*entities.ClassCatalog, error) {
	key := classKey(className)
	if key == "" {
		return nil, errors.InvalidArgument("class name is required")
	}

	target := s.baseURL + url.PathEscape(key) + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", target)
	}
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "fetching class catalog",
		"class", key,
		"url", target)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to fetch %s", target)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFoundf("class catalog %s not found", key).WithMeta("url", target)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Unavailablef("unexpected status %d fetching %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to read %s", target)
	}

	return decodeJSON(body, key)
}

func classKey(className string) string {
	return strings.ToLower(strings.TrimSpace(className))
}

func decodeJSON(body []byte, key string) (*entities.ClassCatalog, error) {
	var doc entities.ClassCatalog
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "malformed catalog for class %s", key)
	}
	if err := validateDocument(&doc); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "invalid catalog for class %s", key)
	}
	return &doc, nil
}

func validateDocument(doc *entities.ClassCatalog) error {
	for i, spell := range doc.Spells {
		if spell == nil {
			return fmt.Errorf("spell %d is null", i)
		}
		if spell.Name == "" {
			return fmt.Errorf("spell %d has no name", i)
		}
	}
	return nil
}
