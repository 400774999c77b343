// ABOUTME: Tests for the file-backed tuning example store
// ABOUTME: Covers fail-soft loading, append round-trips, ordering, and concurrency

package tuning

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")

	s := NewStore(path, nil)
	assert.Equal(t, 0, s.Len())
}

func TestStore_LoadUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewStore(path, nil)
	assert.Equal(t, 0, s.Len())
}

func TestStore_AppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")

	s := NewStore(path, nil)
	require.NoError(t, s.Append(Example{Input: "siapa ketua OSIS?", Output: "Ketua OSIS adalah Rani."}))
	require.NoError(t, s.Append(Example{Input: "kapan rapat?", Output: "Rapat setiap Jumat."}))

	// A fresh store loading the same file must see both, in order,
	// with the new example last.
	reloaded := NewStore(path, nil)
	got := reloaded.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "siapa ketua OSIS?", got[0].Input)
	assert.Equal(t, "kapan rapat?", got[1].Input)
	assert.Equal(t, "Rapat setiap Jumat.", got[1].Output)
}

func TestStore_AppendPreservesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")
	existing := `[{"input": "a", "output": "b"}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	s := NewStore(path, nil)
	require.Equal(t, 1, s.Len())
	require.NoError(t, s.Append(Example{Input: "c", Output: "d"}))

	got := s.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, Example{Input: "a", Output: "b"}, got[0])
	assert.Equal(t, Example{Input: "c", Output: "d"}, got[1])
}

func TestStore_AppendRejectsEmptyFields(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "tuning_data.json"), nil)

	assert.Error(t, s.Append(Example{Input: "", Output: "x"}))
	assert.Error(t, s.Append(Example{Input: "x", Output: ""}))
	assert.Equal(t, 0, s.Len())
}

func TestStore_FileFormatIsPrettyPrintedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")

	s := NewStore(path, nil)
	require.NoError(t, s.Append(Example{Input: "a", Output: "b"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []Example
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 1)
	// Pretty-printed: indentation must be present
	assert.Contains(t, string(data), "\n    ")
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")
	s := NewStore(path, nil)
	require.NoError(t, s.Append(Example{Input: "a", Output: "b"}))

	snap := s.Snapshot()
	snap[0].Input = "mutated"

	assert.Equal(t, "a", s.Snapshot()[0].Input)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning_data.json")
	s := NewStore(path, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(Example{Input: "in", Output: "out"}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())

	// The file must reflect every append, not just the last writer.
	reloaded := NewStore(path, nil)
	assert.Equal(t, 10, reloaded.Len())
}
