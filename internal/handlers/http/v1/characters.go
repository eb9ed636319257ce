package v1

import (
	"net/http"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/character"
)

type characterRequest struct {
	Name       string `json:"name"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	SyncSpells *bool  `json:"syncSpells,omitempty"`
}

type qualityRequest struct {
	Quality string `json:"quality"`
}

type charactersResponse struct {
	Characters []*entities.Character `json:"characters"`
}

type qualityResponse struct {
	Spell   string                `json:"spell"`
	Quality entities.SpellQuality `json:"quality"`
}

type setQualityResponse struct {
	Applied   bool                `json:"applied"`
	Character *entities.Character `json:"character,omitempty"`
}

type noQualityResponse struct {
	Changed   int                 `json:"changed"`
	Character *entities.Character `json:"character"`
}

type importResponse struct {
	Character  *entities.Character `json:"character"`
	ReplacedID string              `json:"replacedId,omitempty"`
}

type spellViewResponse struct {
	Class             string                    `json:"class"`
	Character         *entities.Character       `json:"character,omitempty"`
	Spells            []*character.SpellViewRow `json:"spells"`
	NoneQualitySpells []string                  `json:"noneQualitySpells"`
}

// ListCharacters returns every stored character
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, charactersResponse{Characters: out.Characters})
}

// CreateCharacter creates a character and, unless disabled, syncs its spells
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sync := true
	if req.SyncSpells != nil {
		sync = *req.SyncSpells
	}

	out, err := h.characterService.Create(r.Context(), &character.CreateInput{
		Name:       req.Name,
		Class:      req.Class,
		Level:      req.Level,
		SyncSpells: sync,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Character)
}

// ClearCharacters removes every character; requires confirm=true
func (h *Handler) ClearCharacters(w http.ResponseWriter, r *http.Request) {
	confirm, err := queryBool(r, "confirm")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !confirm {
		writeError(w, r, errors.FailedPrecondition("clearing all characters requires confirm=true"))
		return
	}

	if err := h.characterService.Clear(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCharacter returns one character
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.Get(r.Context(), &character.GetInput{ID: pathParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Character)
}

// UpdateCharacter edits name, class and level, then resyncs spells
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.characterService.UpdateCharacter(r.Context(), &character.UpdateCharacterInput{
		ID:    pathParam(r, "id"),
		Name:  req.Name,
		Class: req.Class,
		Level: req.Level,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Character)
}

// DeleteCharacter removes a character; unknown IDs succeed
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if _, err := h.characterService.Delete(r.Context(), &character.DeleteInput{ID: pathParam(r, "id")}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncSpells refreshes the character's spell set
func (h *Handler) SyncSpells(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.SyncSpells(r.Context(), &character.SyncSpellsInput{ID: pathParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Character)
}

// LevelUp raises the character one level
func (h *Handler) LevelUp(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.LevelUp(r.Context(), &character.LevelUpInput{ID: pathParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Character)
}

// ApplyNoQualityDefaults forces "none" on no-quality spells
func (h *Handler) ApplyNoQualityDefaults(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.ApplyNoQualityDefaults(r.Context(), &character.ApplyNoQualityDefaultsInput{
		ID: pathParam(r, "id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noQualityResponse{Changed: out.Changed, Character: out.Character})
}

// GetSpellQuality returns the quality chosen for a spell
func (h *Handler) GetSpellQuality(w http.ResponseWriter, r *http.Request) {
	spell := pathParam(r, "spell")
	out, err := h.characterService.QualityOf(r.Context(), &character.QualityOfInput{
		ID:        pathParam(r, "id"),
		SpellName: spell,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qualityResponse{Spell: spell, Quality: out.Quality})
}

// SetSpellQuality chooses the quality for a spell
func (h *Handler) SetSpellQuality(w http.ResponseWriter, r *http.Request) {
	var req qualityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.characterService.SetSpellQuality(r.Context(), &character.SetSpellQualityInput{
		ID:        pathParam(r, "id"),
		SpellName: pathParam(r, "spell"),
		Quality:   req.Quality,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setQualityResponse{Applied: out.Applied, Character: out.Character})
}

// ExportCharacter returns the export document as a download
func (h *Handler) ExportCharacter(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterService.Export(r.Context(), &character.ExportInput{ID: pathParam(r, "id")})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Document.Character.Name+`.json"`)
	writeJSON(w, http.StatusOK, out.Document)
}

// ImportCharacter stores an export document; overwrite=true replaces a
// character with the same name
func (h *Handler) ImportCharacter(w http.ResponseWriter, r *http.Request) {
	overwrite, err := queryBool(r, "overwrite")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var doc entities.ExportDocument
	if err := decodeBody(w, r, &doc); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.characterService.Import(r.Context(), &character.ImportInput{
		Document:  &doc,
		Overwrite: overwrite,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Character: out.Character, ReplacedID: out.ReplacedID})
}

// SpellView lists the character's class spells with the spell list filters:
// hideQuality (repeatable), maxLevel (default 70, 0 disables) and
// hideOutlevelled
func (h *Handler) SpellView(w http.ResponseWriter, r *http.Request) {
	maxLevel, err := queryInt(r, "maxLevel", character.DefaultViewMaxLevel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hideOutlevelled, err := queryBool(r, "hideOutlevelled")
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.characterService.SpellView(r.Context(), &character.SpellViewInput{
		CharacterID:     pathParam(r, "id"),
		HiddenQualities: r.URL.Query()["hideQuality"],
		MaxLevel:        maxLevel,
		HideOutlevelled: hideOutlevelled,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, spellViewResponse{
		Class:             out.Class,
		Character:         out.Character,
		Spells:            out.Rows,
		NoneQualitySpells: out.NoneQualitySpells,
	})
}
