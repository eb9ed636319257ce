package character

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
	"github.com/KirkDiggler/spell-planner/internal/testutils"
)

// rawStore gives tests direct access to the stored document
type rawStore struct {
	seed func(data []byte)
	read func() []byte
}

type RepositoryTestSuite struct {
	suite.Suite
	open func(c clock.Clock) (Repository, rawStore)

	ctx   context.Context
	repo  Repository
	raw   rawStore
	clock *clock.Stepping
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewStepping(testutils.FixedTime, time.Minute)
	s.repo, s.raw = s.open(s.clock)
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{open: func(c clock.Clock) (Repository, rawStore) {
		client, mr := testutils.CreateTestRedisClient(t)
		repo, err := NewRedis(&RedisConfig{Client: client, Clock: c, MaxRetries: 200})
		if err != nil {
			t.Fatal(err)
		}
		return repo, rawStore{
			seed: func(data []byte) {
				if err := mr.Set(DefaultKey, string(data)); err != nil {
					t.Fatal(err)
				}
			},
			read: func() []byte {
				value, err := mr.Get(DefaultKey)
				if err != nil {
					return nil
				}
				return []byte(value)
			},
		}
	}})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{open: func(c clock.Clock) (Repository, rawStore) {
		db, err := OpenSQLite(filepath.Join(t.TempDir(), "planner.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })

		repo, err := NewSQLite(&SQLiteConfig{DB: db, Clock: c})
		if err != nil {
			t.Fatal(err)
		}
		return repo, rawStore{
			seed: func(data []byte) {
				_, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, 0)`, DefaultKey, data)
				if err != nil {
					t.Fatal(err)
				}
			},
			read: func() []byte {
				var value []byte
				if err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, DefaultKey).Scan(&value); err != nil {
					return nil
				}
				return value
			},
		}
	}})
}

func TestSQLiteStampsWriteTime(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := clock.NewStepping(testutils.FixedTime, time.Hour)
	repo, err := NewSQLite(&SQLiteConfig{DB: db, Clock: c})
	require.NoError(t, err)

	updatedAt := func() int64 {
		var ms int64
		require.NoError(t, db.QueryRow(`SELECT updated_at FROM kv WHERE key = ?`, DefaultKey).Scan(&ms))
		return ms
	}

	saved, err := repo.Save(context.Background(), SaveInput{
		Character: &entities.Character{ID: "char_1", Name: "Vex", Class: "warlock", Level: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, testutils.FixedTime.UnixMilli(), updatedAt())
	assert.Equal(t, saved.Character.UpdatedAt.UnixMilli(), updatedAt())

	_, err = repo.Update(context.Background(), UpdateInput{
		ID:    "char_1",
		Apply: func(char *entities.Character) error {
			char.Level = 11
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testutils.FixedTime.Add(time.Hour).UnixMilli(), updatedAt())
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{open: func(c clock.Clock) (Repository, rawStore) {
		backend := &memoryBackend{}
		repo, err := New(&Config{Backend: backend, Clock: c})
		if err != nil {
			t.Fatal(err)
		}
		return repo, rawStore{
			seed: func(data []byte) { backend.data = data },
			read: func() []byte { return backend.data },
		}
	}})
}

func (s *RepositoryTestSuite) save(id, name string) *entities.Character {
	out, err := s.repo.Save(s.ctx, SaveInput{
		Character: testutils.CreateTestCharacter(id, name, "warlock", 10),
	})
	s.Require().NoError(err)
	return out.Character
}

func (s *RepositoryTestSuite) ids() []string {
	out, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	ids := make([]string, 0, len(out.Characters))
	for _, c := range out.Characters {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *RepositoryTestSuite) TestListMissingKeyIsEmpty() {
	out, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(out.Characters)
	s.Zero(out.Quarantined)
}

func (s *RepositoryTestSuite) TestSaveSetsTimestamps() {
	created, err := s.repo.Save(s.ctx, SaveInput{
		Character: &entities.Character{ID: "char_1", Name: "Vex", Class: "warlock", Level: 10},
	})
	s.Require().NoError(err)
	s.True(created.Created)
	s.Equal(testutils.FixedTime, created.Character.CreatedAt)
	s.Equal(testutils.FixedTime, created.Character.UpdatedAt)
	s.NotNil(created.Character.Spells)

	created.Character.Level = 11
	updated, err := s.repo.Save(s.ctx, SaveInput{Character: created.Character})
	s.Require().NoError(err)
	s.False(updated.Created)
	s.Equal(testutils.FixedTime, updated.Character.CreatedAt)
	s.Equal(testutils.FixedTime.Add(time.Minute), updated.Character.UpdatedAt)

	got, err := s.repo.Get(s.ctx, GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal(11, got.Character.Level)
	s.True(got.Character.UpdatedAt.Equal(testutils.FixedTime.Add(time.Minute)))
}

func (s *RepositoryTestSuite) TestSaveKeepsStoredOrder() {
	s.save("a", "Alpha")
	b := s.save("b", "Bravo")
	s.save("c", "Charlie")

	b.Name = "Bravo Prime"
	_, err := s.repo.Save(s.ctx, SaveInput{Character: b})
	s.Require().NoError(err)

	s.Equal([]string{"a", "b", "c"}, s.ids())
}

func (s *RepositoryTestSuite) TestSaveValidation() {
	_, err := s.repo.Save(s.ctx, SaveInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, SaveInput{Character: &entities.Character{Name: "Vex"}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestSaveWithReplaceID() {
	s.save("old", "Vex")
	s.save("other", "Mara")

	_, err := s.repo.Save(s.ctx, SaveInput{
		Character: testutils.CreateTestCharacter("new", "Vex", "warlock", 30),
		ReplaceID: "old",
	})
	s.Require().NoError(err)

	s.Equal([]string{"other", "new"}, s.ids())
}

func (s *RepositoryTestSuite) TestGet() {
	s.save("char_1", "Vex")

	out, err := s.repo.Get(s.ctx, GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Equal("Vex", out.Character.Name)

	_, err = s.repo.Get(s.ctx, GetInput{ID: "missing"})
	s.True(errors.IsNotFound(err))
	s.Equal("missing", errors.GetMeta(err)["character_id"])

	_, err = s.repo.Get(s.ctx, GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestFindByName() {
	s.save("char_1", "Vex")

	out, err := s.repo.FindByName(s.ctx, FindByNameInput{Name: "Vex"})
	s.Require().NoError(err)
	s.Equal("char_1", out.Character.ID)

	_, err = s.repo.FindByName(s.ctx, FindByNameInput{Name: "vex"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDelete() {
	s.save("a", "Alpha")
	s.save("b", "Bravo")

	out, err := s.repo.Delete(s.ctx, DeleteInput{ID: "a"})
	s.Require().NoError(err)
	s.True(out.Deleted)
	s.Equal([]string{"b"}, s.ids())
}

func (s *RepositoryTestSuite) TestDeleteMissingIsNoop() {
	out, err := s.repo.Delete(s.ctx, DeleteInput{ID: "missing"})
	s.Require().NoError(err)
	s.False(out.Deleted)
	s.Nil(s.raw.read(), "nothing should be written")

	s.save("a", "Alpha")
	before := s.raw.read()
	_, err = s.repo.Delete(s.ctx, DeleteInput{ID: "missing"})
	s.Require().NoError(err)
	s.Equal(before, s.raw.read())
}

func (s *RepositoryTestSuite) TestUpdate() {
	s.save("char_1", "Vex")

	out, err := s.repo.Update(s.ctx, UpdateInput{
		ID: "char_1",
		Apply: func(c *entities.Character) error {
			c.Level = 20
			c.ID = "hijacked"
			return nil
		},
	})
	s.Require().NoError(err)
	s.Equal("char_1", out.Character.ID)
	s.Equal(20, out.Character.Level)
	s.Equal(testutils.FixedTime, out.Character.CreatedAt)
	s.Equal(testutils.FixedTime.Add(time.Minute), out.Character.UpdatedAt)
}

func (s *RepositoryTestSuite) TestUpdateApplyErrorLeavesStoreUnchanged() {
	s.save("char_1", "Vex")
	before := s.raw.read()

	_, err := s.repo.Update(s.ctx, UpdateInput{
		ID: "char_1",
		Apply: func(c *entities.Character) error {
			c.Level = 99
			return errors.FailedPrecondition("nope")
		},
	})
	s.True(errors.IsFailedPrecondition(err))
	s.Equal(before, s.raw.read())
}

func (s *RepositoryTestSuite) TestUpdateNotFound() {
	_, err := s.repo.Update(s.ctx, UpdateInput{
		ID:    "missing",
		Apply: func(*entities.Character) error { return nil },
	})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestConcurrentUpdatesAreSerialized() {
	s.save("char_1", "Vex")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.repo.Update(s.ctx, UpdateInput{
				ID: "char_1",
				Apply: func(c *entities.Character) error {
					c.Spells = append(c.Spells, &entities.CharacterSpell{
						Spell:   entities.Spell{Name: fmt.Sprintf("Spell %d", i), Line: "line", Level: "1"},
						Quality: entities.DefaultQuality(),
					})
					return nil
				},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	out, err := s.repo.Get(s.ctx, GetInput{ID: "char_1"})
	s.Require().NoError(err)
	s.Len(out.Character.Spells, writers)
}

func (s *RepositoryTestSuite) TestUnreadableDocumentIsEmptyAndKept() {
	corrupt := []byte(`{"not":"an array"`)
	s.raw.seed(corrupt)

	out, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(out.Characters)

	_, err = s.repo.Save(s.ctx, SaveInput{
		Character: &entities.Character{ID: "char_1", Name: "Vex", Class: "warlock", Level: 10},
	})
	s.True(errors.IsDataLoss(err))
	s.Equal(len(corrupt), errors.GetMeta(err)[errors.MetaBytes])

	_, err = s.repo.Delete(s.ctx, DeleteInput{ID: "char_1"})
	s.True(errors.IsDataLoss(err))
	s.Equal(corrupt, s.raw.read())

	s.Require().NoError(s.repo.Clear(s.ctx))
	s.save("char_1", "Vex")
	s.Equal([]string{"char_1"}, s.ids())
}

func (s *RepositoryTestSuite) TestInvalidRecordsAreQuarantined() {
	s.raw.seed([]byte(`[
		{"id":"good","name":"Vex","class":"warlock","level":10,"spells":[],
		 "createdAt":"2025-03-14T12:00:00Z","updatedAt":"2025-03-14T12:00:00Z"},
		{"id":"noclass","name":"Ghost","level":10},
		{"id":"toohigh","name":"Titan","class":"warlock","level":500},
		"garbage",
		{"id":"good","name":"Duplicate","class":"warlock","level":5}
	]`))

	out, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out.Characters, 1)
	s.Equal("good", out.Characters[0].ID)
	s.Equal(4, out.Quarantined)

	_, err = s.repo.Get(s.ctx, GetInput{ID: "noclass"})
	s.True(errors.IsNotFound(err))

	s.save("new", "Mara")

	var stored []json.RawMessage
	s.Require().NoError(json.Unmarshal(s.raw.read(), &stored))
	s.Len(stored, 6, "quarantined records must be written back")
	s.JSONEq(`{"id":"noclass","name":"Ghost","level":10}`, string(stored[1]))
	s.JSONEq(`"garbage"`, string(stored[3]))
}

func (s *RepositoryTestSuite) TestStoredQualitiesAreCanonicalized() {
	s.raw.seed([]byte(`[{"id":"c","name":"Vex","class":"warlock","level":10,"spells":[
		{"name":"Bolt I","line":"bolt","level":"1","quality":{"name":"expert","displayName":"stale"}},
		{"name":"Ward","line":"ward","level":10,"quality":{"name":"legendary"}},
		{"name":"Bolt I","line":"bolt","level":"1","quality":{"name":"none"}}
	]}]`))

	out, err := s.repo.Get(s.ctx, GetInput{ID: "c"})
	s.Require().NoError(err)
	s.Require().Len(out.Character.Spells, 2)

	bolt := out.Character.FindSpell("Bolt I")
	s.Require().NotNil(bolt)
	s.Equal("Expert", bolt.Quality.DisplayName)

	ward := out.Character.FindSpell("Ward")
	s.Require().NotNil(ward)
	s.Equal(entities.SpellLevel("10"), ward.Level)
	s.Equal(entities.QualityApprentice, ward.Quality.Name)
}

func (s *RepositoryTestSuite) TestClear() {
	s.save("a", "Alpha")

	s.Require().NoError(s.repo.Clear(s.ctx))
	s.Empty(s.ids())
	s.Nil(s.raw.read())
}
