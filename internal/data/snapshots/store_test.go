package snapshots

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeflow/internal/engine/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLatestRun(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "db", "codeflow.db"))
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first, err := s.SaveRun(Run{
		ProjectKey: "proj",
		Timestamp:  base,
		MainFile:   "main.py",
		Summary:    store.Summary{TotalFiles: 2, TotalLines: 40},
		Document:   []byte(`{"files":{}}`),
	})
	require.NoError(t, err)
	_, err = uuid.Parse(first.RunID)
	require.NoError(t, err)

	second, err := s.SaveRun(Run{
		ProjectKey:   "proj",
		Timestamp:    base.Add(time.Minute),
		MainFile:     "main.py",
		Summary:      store.Summary{TotalFiles: 3, TotalImports: 7, TotalIOOperations: 1, TotalLines: 55, EmptyFiles: 1},
		GraphNodes:   4,
		GraphEdges:   3,
		SkippedFiles: 1,
		Document:     []byte(`{"summary":{"total_files":3}}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	latest, ok, err := s.LatestRun("proj")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.RunID, latest.RunID)
	assert.Equal(t, second.Summary, latest.Summary)
	assert.Equal(t, 4, latest.GraphNodes)
	assert.Equal(t, 1, latest.SkippedFiles)
	assert.Equal(t, `{"summary":{"total_files":3}}`, string(latest.Document))
	assert.True(t, latest.Timestamp.Equal(base.Add(time.Minute)))

	runs, err := s.ListRuns("proj")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.RunID, runs[0].RunID)
	assert.Nil(t, runs[0].Document)

	_, ok, err = s.LatestRun("other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DefaultProjectAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeflow.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.SaveRun(Run{Summary: store.Summary{TotalFiles: 1}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	latest, ok, err := reopened.LatestRun("")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "default", latest.ProjectKey)
	assert.Equal(t, "{}", string(latest.Document))
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db, err := sql.Open(driverName, filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureSchema(db))
	require.NoError(t, EnsureSchema(db))

	var version int
	require.NoError(t, db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestOpen_RejectsBadPaths(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
	_, err = Open(t.TempDir())
	assert.Error(t, err)
}
