package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/tag"
)

var (
	noun = tag.MustNew(tag.PartOfSpeech, 1)
	verb = tag.MustNew(tag.PartOfSpeech, 2)
	past = tag.MustNew(tag.Tense, 2)
)

// createTestStore creates a new store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func storedList(t *testing.T, elems ...string) []tag.Stored {
	t.Helper()
	out := make([]tag.Stored, len(elems))
	for i, e := range elems {
		s, err := tag.ParseStored([]byte(e))
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

func createTestRun(id string, matches ...ir.Match) ir.MatchRun {
	return ir.MatchRun{
		ID:       id,
		Words:    []string{"dogs", "ran"},
		MinMatch: 2,
		Matches:  matches,
	}
}
