package v1

import (
	"net/http"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
)

type classesResponse struct {
	Classes []string `json:"classes"`
}

type qualitiesResponse struct {
	Qualities []entities.SpellQuality `json:"qualities"`
	Default   string                  `json:"default"`
}

type classSpellsResponse struct {
	Class  string                           `json:"class"`
	Spells []*entities.SpellWithReplacement `json:"spells"`
}

type knownSpellsResponse struct {
	Class  string                     `json:"class"`
	Level  int                        `json:"level"`
	Spells []*entities.CharacterSpell `json:"spells"`
}

// ListClasses returns the configured class ids
func (h *Handler) ListClasses(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, classesResponse{Classes: h.catalogService.ListAvailableClasses()})
}

// ListQualities returns the quality table
func (h *Handler) ListQualities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, qualitiesResponse{
		Qualities: entities.SpellQualities(),
		Default:   entities.DefaultQuality().Name,
	})
}

// ListClassSpells returns every spell of the class with its replacement level
func (h *Handler) ListClassSpells(w http.ResponseWriter, r *http.Request) {
	class := pathParam(r, "class")

	out, err := h.catalogService.ListSpellsWithReplacement(r.Context(), &catalog.ListSpellsWithReplacementInput{
		ClassName: class,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, classSpellsResponse{Class: class, Spells: out.Spells})
}

// ListKnownSpells returns the spells a character of the given level knows
func (h *Handler) ListKnownSpells(w http.ResponseWriter, r *http.Request) {
	class := pathParam(r, "class")
	level, err := queryInt(r, "level", entities.MinCharacterLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.catalogService.ListKnownSpells(r.Context(), &catalog.ListKnownSpellsInput{
		ClassName: class,
		Level:     level,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, knownSpellsResponse{Class: class, Level: level, Spells: out.Spells})
}

// InvalidateCatalog drops one cached class, or all of them
func (h *Handler) InvalidateCatalog(w http.ResponseWriter, r *http.Request) {
	h.catalogService.Invalidate(r.Context(), &catalog.InvalidateInput{ClassName: pathParam(r, "class")})
	w.WriteHeader(http.StatusNoContent)
}
