// Package catalog implements the spell catalog orchestrator: a per-process
// cache of class catalogs and the views derived from them
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	catalogclient "github.com/KirkDiggler/spell-planner/internal/clients/catalog"
	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

// DefaultClasses are the playable classes with a spell catalog
var DefaultClasses = []string{
	"assassin", "berserker", "brigand", "bruiser", "coercer", "conjuror",
	"defiler", "dirge", "fury", "guardian", "illusionist", "inquisitor",
	"monk", "mystic", "necromancer", "paladin", "ranger", "shadowknight",
	"swashbuckler", "templar", "troubador", "warden", "warlock", "wizard",
}

// defaultPreloadConcurrency bounds parallel fetches while warming the cache
const defaultPreloadConcurrency = 4

const defaultFetchTimeout = 30 * time.Second

// Service defines the interface for catalog operations
type Service interface {
	LoadClassCatalog(ctx context.Context, input *LoadClassCatalogInput) (*LoadClassCatalogOutput, error)
	ListSpellsWithReplacement(ctx context.Context, input *ListSpellsWithReplacementInput) (*ListSpellsWithReplacementOutput, error)
	ListKnownSpells(ctx context.Context, input *ListKnownSpellsInput) (*ListKnownSpellsOutput, error)
	ListSpellsAtLevel(ctx context.Context, input *ListSpellsAtLevelInput) (*ListSpellsAtLevelOutput, error)

	// ListAvailableClasses returns the configured class names
	ListAvailableClasses() []string
	// IsKnownClass reports whether the class is configured, ignoring case
	IsKnownClass(className string) bool

	Preload(ctx context.Context, input *PreloadInput) (*PreloadOutput, error)
	Invalidate(ctx context.Context, input *InvalidateInput)
}

// Config holds the dependencies for the catalog orchestrator
type Config struct {
	Source catalogclient.Source
	// Classes overrides DefaultClasses
	Classes []string
	// PreloadConcurrency defaults to 4
	PreloadConcurrency int
	// FetchTimeout bounds one source fetch, defaults to 30s
	FetchTimeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Source == nil {
		vb.RequiredField("Source")
	}
	if c.PreloadConcurrency < 0 {
		vb.Field("PreloadConcurrency", "must not be negative")
	}
	if c.FetchTimeout < 0 {
		vb.Field("FetchTimeout", "must not be negative")
	}
	return vb.Build()
}

type orchestrator struct {
	source      catalogclient.Source
	classes     []string
	concurrency int

	// fetchTimeout bounds a shared fetch, which ignores caller cancellation
	fetchTimeout time.Duration

	mu    sync.RWMutex
	cache map[string]*entities.ClassCatalog
	group singleflight.Group
}

// NewOrchestrator creates a catalog orchestrator with an empty cache
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	classes := DefaultClasses
	if len(cfg.Classes) > 0 {
		classes = make([]string, 0, len(cfg.Classes))
		for _, class := range cfg.Classes {
			if class = cacheKey(class); class != "" {
				classes = append(classes, class)
			}
		}
	}

	concurrency := cfg.PreloadConcurrency
	if concurrency == 0 {
		concurrency = defaultPreloadConcurrency
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &orchestrator{
		source:       cfg.Source,
		classes:      classes,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
		cache:        make(map[string]*entities.ClassCatalog),
	}, nil
}

func cacheKey(className string) string {
	return strings.ToLower(strings.TrimSpace(className))
}

// LoadClassCatalog returns the cached catalog or fetches it. Fetch failures
// become an empty catalog so one bad class file never breaks the rest.
// Only configured classes are cached.
func (o *orchestrator) LoadClassCatalog(ctx context.Context, input *LoadClassCatalogInput) (*LoadClassCatalogOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	key := cacheKey(input.ClassName)
	if key == "" {
		return nil, errors.InvalidArgument("class name is required")
	}

	if doc, ok := o.cached(key); ok {
		return &LoadClassCatalogOutput{Catalog: doc}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(err, "catalog load canceled")
	}

	// the shared fetch outlives any single caller
	fetchCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(key, func() (interface{}, error) {
		if doc, ok := o.cached(key); ok {
			return doc, nil
		}

		doc := o.fetch(fetchCtx, key, input.ClassName)
		if !o.IsKnownClass(key) {
			slog.DebugContext(fetchCtx, "not caching catalog for unconfigured class",
				"class", key)
			return doc, nil
		}

		o.mu.Lock()
		o.cache[key] = doc
		o.mu.Unlock()

		slog.DebugContext(fetchCtx, "cached class catalog",
			"class", key,
			"spells", len(doc.Spells))
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Canceled(ctx.Err(), "catalog load canceled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return &LoadClassCatalogOutput{Catalog: res.Val.(*entities.ClassCatalog)}, nil
	}
}

// fetch never fails: source errors are absorbed into an empty catalog
func (o *orchestrator) fetch(ctx context.Context, key, className string) *entities.ClassCatalog {
	ctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	doc, err := o.source.FetchClass(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "failed to load class catalog, using empty catalog",
			append([]any{"class", className}, errors.LogAttrs(err)...)...)
		return &entities.ClassCatalog{Class: className, Spells: []*entities.Spell{}}
	}
	if doc.Spells == nil {
		doc.Spells = []*entities.Spell{}
	}
	return doc
}

func (o *orchestrator) cached(key string) (*entities.ClassCatalog, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	doc, ok := o.cache[key]
	return doc, ok
}

func (o *orchestrator) ListSpellsWithReplacement(
	ctx context.Context,
	input *ListSpellsWithReplacementInput,
) (*ListSpellsWithReplacementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loaded, err := o.LoadClassCatalog(ctx, &LoadClassCatalogInput{ClassName: input.ClassName})
	if err != nil {
		return nil, err
	}

	return &ListSpellsWithReplacementOutput{Spells: DeriveReplacementInfo(loaded.Catalog)}, nil
}

func (o *orchestrator) ListKnownSpells(ctx context.Context, input *ListKnownSpellsInput) (*ListKnownSpellsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loaded, err := o.LoadClassCatalog(ctx, &LoadClassCatalogInput{ClassName: input.ClassName})
	if err != nil {
		return nil, err
	}

	return &ListKnownSpellsOutput{Spells: DeriveKnownSpells(loaded.Catalog, input.Level)}, nil
}

// ListSpellsAtLevel returns every spell at or below the level, not just the
// current spell of each line
func (o *orchestrator) ListSpellsAtLevel(ctx context.Context, input *ListSpellsAtLevelInput) (*ListSpellsAtLevelOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	loaded, err := o.LoadClassCatalog(ctx, &LoadClassCatalogInput{ClassName: input.ClassName})
	if err != nil {
		return nil, err
	}

	spells := make([]*entities.Spell, 0, len(loaded.Catalog.Spells))
	for _, spell := range loaded.Catalog.Spells {
		if n, ok := spell.Level.Int(); ok && n <= input.Level {
			spells = append(spells, spell)
		}
	}
	sort.SliceStable(spells, func(a, b int) bool {
		return spells[a].Level.SortKey() < spells[b].Level.SortKey()
	})

	return &ListSpellsAtLevelOutput{Spells: spells}, nil
}

func (o *orchestrator) ListAvailableClasses() []string {
	out := make([]string, len(o.classes))
	copy(out, o.classes)
	return out
}

func (o *orchestrator) IsKnownClass(className string) bool {
	key := cacheKey(className)
	for _, class := range o.classes {
		if class == key {
			return true
		}
	}
	return false
}

// Preload warms the cache with bounded concurrency. Individual class
// failures are absorbed like any other load.
func (o *orchestrator) Preload(ctx context.Context, input *PreloadInput) (*PreloadOutput, error) {
	classes := o.classes
	if input != nil && len(input.ClassNames) > 0 {
		classes = input.ClassNames
	}

	counts := make([]int, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			loaded, err := o.LoadClassCatalog(gctx, &LoadClassCatalogInput{ClassName: class})
			if err != nil {
				return errors.Wrapf(err, "failed to preload %s", class)
			}
			counts[i] = len(loaded.Catalog.Spells)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &PreloadOutput{SpellCounts: make(map[string]int, len(classes))}
	for i, class := range classes {
		out.SpellCounts[cacheKey(class)] = counts[i]
	}

	slog.InfoContext(ctx, "preloaded class catalogs",
		"classes", len(classes))

	return out, nil
}

func (o *orchestrator) Invalidate(ctx context.Context, input *InvalidateInput) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if input == nil || cacheKey(input.ClassName) == "" {
		o.cache = make(map[string]*entities.ClassCatalog)
		slog.InfoContext(ctx, "invalidated all class catalogs")
		return
	}

	key := cacheKey(input.ClassName)
	delete(o.cache, key)
	slog.InfoContext(ctx, "invalidated class catalog", "class", key)
}
