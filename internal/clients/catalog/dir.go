package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

// DirConfig contains configuration options for the directory source.
type DirConfig struct {
	// Dir holds <class>.json, <class>.yaml or <class>.yml files
	Dir string
}

// Validate validates the DirConfig.
func (cfg *DirConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Dir == "" {
		return errors.InvalidArgument("catalog directory is required")
	}
	return nil
}

type dirSource struct {
	fsys fs.FS
}

// NewDir creates a source that reads class files from a local directory
func NewDir(cfg *DirConfig) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &dirSource{fsys: os.DirFS(filepath.Clean(cfg.Dir))}, nil
}

// yamlCatalog mirrors entities.ClassCatalog for YAML documents. Levels are
// read from the raw scalar so both `level: 20` and `level: "20"` work.
type yamlCatalog struct {
	Class  string `yaml:"class"`
	Spells []struct {
		Name  string    `yaml:"name"`
		Line  string    `yaml:"line"`
		Level yaml.Node `yaml:"level"`
	} `yaml:"spells"`
	NoQuality []string `yaml:"noquality"`
}

func (s *dirSource) FetchClass(ctx context.Context, className string) (*entities.ClassCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(err, "fetch canceled")
	}

	key := classKey(className)
	if key == "" {
		return nil, errors.InvalidArgument("class name is required")
	}

	if body, err := fs.ReadFile(s.fsys, key+".json"); err == nil {
		return decodeJSON(body, key)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to read %s.json", key)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		body, err := fs.ReadFile(s.fsys, key+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to read %s%s", key, ext)
		}
		return decodeYAML(body, key)
	}

	return nil, errors.NotFoundf("class catalog %s not found", key)
}

func decodeYAML(body []byte, key string) (*entities.ClassCatalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "malformed catalog for class %s", key)
	}

	out := &entities.ClassCatalog{
		Class:     doc.Class,
		Spells:    make([]*entities.Spell, 0, len(doc.Spells)),
		NoQuality: doc.NoQuality,
	}
	for _, spell := range doc.Spells {
		out.Spells = append(out.Spells, &entities.Spell{
			Name:  spell.Name,
			Line:  spell.Line,
			Level: entities.SpellLevel(spell.Level.Value),
		})
	}

	if err := validateDocument(out); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeDataLoss, "invalid catalog for class %s", key)
	}
	return out, nil
}
