// Package idgen creates the IDs assigned to new and imported characters
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// CharacterPrefix starts every character ID the planner assigns
const CharacterPrefix = "char"

// Generator returns a fresh ID on every call
type Generator interface {
	Generate() string
}

// Random yields "<prefix>_<uuid v4>"
type Random struct {
	prefix string
}

// NewUUID returns a Random generator. An empty prefix yields bare UUIDs.
func NewUUID(prefix string) *Random {
	return &Random{prefix: prefix}
}

func (g *Random) Generate() string {
	return withPrefix(g.prefix, uuid.NewString())
}

// Sequential yields "<prefix>_1", "<prefix>_2", ... and is safe for
// concurrent use. Tests rely on it for stable IDs.
type Sequential struct {
	prefix string
	last   atomic.Uint64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) Generate() string {
	return withPrefix(g.prefix, strconv.FormatUint(g.last.Add(1), 10))
}

func withPrefix(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
