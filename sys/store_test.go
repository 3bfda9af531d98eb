package sys

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGuildID = snowflake.ID(123456789012345678)

type counterDoc struct {
	N int `json:"n"`
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	saved := counterDoc{N: 42}
	require.NoError(t, s.Save(testGuildID, "counter", &saved))

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, saved, loaded)
}

func TestStore_LoadMissingDocument(t *testing.T) {
	s := NewStore(t.TempDir())

	loaded := counterDoc{N: 7}
	require.NoError(t, s.Load(testGuildID, "nope", &loaded))
	assert.Equal(t, 7, loaded.N, "missing document must leave the value untouched")
}

func TestStore_LoadCorruptDocument(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	dir := filepath.Join(root, testGuildID.String())
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.json"), []byte("{not json"), 0644))

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded), "corrupt document reads as empty, not as an error")
	assert.Equal(t, 0, loaded.N)

	// The store must accept new writes after data loss.
	require.NoError(t, s.Save(testGuildID, "counter", &counterDoc{N: 1}))
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, 1, loaded.N)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	require.NoError(t, s.Save(testGuildID, "counter", &counterDoc{N: 1}))

	entries, err := os.ReadDir(filepath.Join(root, testGuildID.String()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "counter.json", entries[0].Name())
}

func TestStore_Update(t *testing.T) {
	s := NewStore(t.TempDir())

	for i := 0; i < 3; i++ {
		var doc counterDoc
		require.NoError(t, s.Update(testGuildID, "counter", &doc, func() error {
			doc.N++
			return nil
		}))
	}

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, 3, loaded.N)
}

func TestStore_UpdateSerializesConcurrentWriters(t *testing.T) {
	s := NewStore(t.TempDir())

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var doc counterDoc
			_ = s.Update(testGuildID, "counter", &doc, func() error {
				doc.N++
				return nil
			})
		}()
	}
	wg.Wait()

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, workers, loaded.N, "no increment may be lost")
}

func TestStore_UpdateErrorSkipsSave(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Save(testGuildID, "counter", &counterDoc{N: 5}))

	var doc counterDoc
	err := s.Update(testGuildID, "counter", &doc, func() error {
		doc.N = 99
		return assert.AnError
	})
	require.Error(t, err)

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, 5, loaded.N, "failed update must not write")
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Delete(testGuildID, "counter"), "deleting a missing document is not an error")

	require.NoError(t, s.Save(testGuildID, "counter", &counterDoc{N: 1}))
	require.NoError(t, s.Delete(testGuildID, "counter"))

	var loaded counterDoc
	require.NoError(t, s.Load(testGuildID, "counter", &loaded))
	assert.Equal(t, 0, loaded.N)
}

func TestStore_GuildIDs(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	other := snowflake.ID(987654321098765432)
	require.NoError(t, s.Save(testGuildID, "counter", &counterDoc{N: 1}))
	require.NoError(t, s.Save(other, "counter", &counterDoc{N: 2}))

	// Stray non-snowflake directories are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-guild"), 0755))

	ids, err := s.GuildIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{testGuildID, other}, ids)
}
