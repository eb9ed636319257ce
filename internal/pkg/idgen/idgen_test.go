package idgen_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/spell-planner/internal/pkg/idgen"
)

func TestSequential(t *testing.T) {
	gen := idgen.NewSequential(idgen.CharacterPrefix)
	assert.Equal(t, "char_1", gen.Generate())
	assert.Equal(t, "char_2", gen.Generate())

	assert.Equal(t, "1", idgen.NewSequential("").Generate())
}

func TestSequentialIsUniqueUnderConcurrency(t *testing.T) {
	gen := idgen.NewSequential("char")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.True(t, seen["char_50"])
}

func TestRandom(t *testing.T) {
	gen := idgen.NewUUID(idgen.CharacterPrefix)
	a, b := gen.Generate(), gen.Generate()

	assert.True(t, strings.HasPrefix(a, "char_"))
	assert.Len(t, a, len("char_")+36)
	assert.NotEqual(t, a, b)
	assert.Len(t, idgen.NewUUID("").Generate(), 36)
}
