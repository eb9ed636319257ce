// Package v1 exposes the catalog and character services as a JSON HTTP API
package v1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/character"
)

// HandlerConfig holds dependencies for the HTTP handler
type HandlerConfig struct {
	CharacterService character.Service
	CatalogService   catalog.Service
	// RequestTimeout bounds each request; zero disables it
	RequestTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.CharacterService == nil {
		vb.RequiredField("CharacterService")
	}
	if c.CatalogService == nil {
		vb.RequiredField("CatalogService")
	}
	return vb.Build()
}

// Handler serves the planner API
type Handler struct {
	characterService character.Service
	catalogService   catalog.Service
	requestTimeout   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid handler config")
	}

	return &Handler{
		characterService: cfg.CharacterService,
		catalogService:   cfg.CatalogService,
		requestTimeout:   cfg.RequestTimeout,
	}, nil
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	if h.requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(h.requestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/qualities", h.ListQualities)

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", h.ListClasses)
			r.Get("/{class}/spells", h.ListClassSpells)
			r.Get("/{class}/known", h.ListKnownSpells)
			r.Delete("/cache", h.InvalidateCatalog)
			r.Delete("/{class}/cache", h.InvalidateCatalog)
		})

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", h.ListCharacters)
			r.Post("/", h.CreateCharacter)
			r.Delete("/", h.ClearCharacters)
			r.Post("/import", h.ImportCharacter)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCharacter)
				r.Put("/", h.UpdateCharacter)
				r.Delete("/", h.DeleteCharacter)
				r.Post("/sync", h.SyncSpells)
				r.Post("/level-up", h.LevelUp)
				r.Post("/no-quality", h.ApplyNoQualityDefaults)
				r.Get("/export", h.ExportCharacter)
				r.Get("/spells", h.SpellView)
				r.Get("/spells/{spell}/quality", h.GetSpellQuality)
				r.Put("/spells/{spell}/quality", h.SetSpellQuality)
			})
		})
	})

	return r
}
