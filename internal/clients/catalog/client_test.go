package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/spell-planner/internal/clients/catalog"
	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

const warlockJSON = `{
	"class": "warlock",
	"spells": [
		{"name": "Bolt I", "line": "bolt", "level": "1"},
		{"name": "Bolt II", "line": "bolt", "level": "20"},
		{"name": "Ward", "line": "ward", "level": 10}
	],
	"noquality": ["Ward"]
}`

type HTTPSourceTestSuite struct {
	suite.Suite
	server   *httptest.Server
	requests []string
	source   catalog.Source
	ctx      context.Context
}

func TestHTTPSourceSuite(t *testing.T) {
	suite.Run(t, new(HTTPSourceTestSuite))
}

func (s *HTTPSourceTestSuite) SetupTest() {
	s.requests = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests = append(s.requests, r.URL.Path)
		switch r.URL.Path {
		case "/assets/warlock.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(warlockJSON))
		case "/assets/broken.json":
			_, _ = w.Write([]byte(`{"class": "broken", "spells": [`))
		case "/assets/down.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	s.T().Cleanup(s.server.Close)

	source, err := catalog.NewHTTP(&catalog.HTTPConfig{BaseURL: s.server.URL + "/assets"})
	s.Require().NoError(err)
	s.source = source
	s.ctx = context.Background()
}

func (s *HTTPSourceTestSuite) TestFetchLowercasesClassName() {
	doc, err := s.source.FetchClass(s.ctx, "Warlock")
	s.Require().NoError(err)

	s.Equal([]string{"/assets/warlock.json"}, s.requests)
	s.Equal("warlock", doc.Class)
	s.Len(doc.Spells, 3)
	s.Equal(entities.SpellLevel("10"), doc.Spells[2].Level)
	s.Equal([]string{"Ward"}, doc.NoQuality)
}

func (s *HTTPSourceTestSuite) TestFetchErrors() {
	_, err := s.source.FetchClass(s.ctx, "bard")
	s.True(errors.IsNotFound(err))

	_, err = s.source.FetchClass(s.ctx, "broken")
	s.True(errors.IsDataLoss(err))

	_, err = s.source.FetchClass(s.ctx, "down")
	s.True(errors.IsUnavailable(err))

	_, err = s.source.FetchClass(s.ctx, "  ")
	s.True(errors.IsInvalidArgument(err))
}

func (s *HTTPSourceTestSuite) TestConfigRequiresBaseURL() {
	_, err := catalog.NewHTTP(&catalog.HTTPConfig{})
	s.True(errors.IsInvalidArgument(err))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "warlock.json"), warlockJSON)
	writeFile(t, filepath.Join(dir, "wizard.yaml"), `
class: wizard
spells:
  - name: Ice Comet
    line: comet
    level: 12
  - name: Ice Comet II
    line: comet
    level: "32"
noquality:
  - Ice Comet
`)

	source, err := catalog.NewDir(&catalog.DirConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	t.Run("json file", func(t *testing.T) {
		doc, err := source.FetchClass(ctx, "WARLOCK")
		if err != nil {
			t.Fatal(err)
		}
		if len(doc.Spells) != 3 {
			t.Fatalf("expected 3 spells, got %d", len(doc.Spells))
		}
	})

	t.Run("yaml file", func(t *testing.T) {
		doc, err := source.FetchClass(ctx, "wizard")
		if err != nil {
			t.Fatal(err)
		}
		if doc.Spells[0].Level != "12" || doc.Spells[1].Level != "32" {
			t.Fatalf("unexpected levels %q %q", doc.Spells[0].Level, doc.Spells[1].Level)
		}
		if !doc.IsNoQuality("Ice Comet") {
			t.Fatal("expected Ice Comet to be a no-quality spell")
		}
	})

	t.Run("missing class", func(t *testing.T) {
		_, err := source.FetchClass(ctx, "bard")
		if !errors.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
