package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureReadOnly_AcceptsSelect(t *testing.T) {
	require.NoError(t, EnsureReadOnly(`SELECT "Revenue" FROM main`))
	require.NoError(t, EnsureReadOnly(`select 1`))
	require.NoError(t, EnsureReadOnly("  SELECT 1  "))
}

func TestEnsureReadOnly_AcceptsTrailingSemicolon(t *testing.T) {
	require.NoError(t, EnsureReadOnly(`SELECT 1;`))
}

func TestEnsureReadOnly_RejectsMutatingStatements(t *testing.T) {
	for _, sql := range []string{
		"DROP TABLE main",
		"DELETE FROM main",
		"UPDATE main SET \"Revenue\" = 0",
		"INSERT INTO main VALUES (1)",
		"TRUNCATE main",
	} {
		err := EnsureReadOnly(sql)
		require.Error(t, err, sql)
		require.ErrorIs(t, err, ErrNotReadOnly)
		require.Contains(t, err.Error(), "only read-only queries allowed")
	}
}

func TestEnsureReadOnly_RejectsStackedStatements(t *testing.T) {
	err := EnsureReadOnly("SELECT 1; DROP TABLE main")
	require.ErrorIs(t, err, ErrNotReadOnly)
	require.Contains(t, err.Error(), "stacked statements")
}

func TestEnsureReadOnly_RejectsEmpty(t *testing.T) {
	require.ErrorIs(t, EnsureReadOnly(""), ErrNotReadOnly)
	require.ErrorIs(t, EnsureReadOnly("   \n "), ErrNotReadOnly)
}

func TestStripFences(t *testing.T) {
	raw := "```sql\nSELECT 1\n```"
	// The generic fence matcher only knows the bare and json variants; a
	// language tag like sql survives as text. Models here are told to emit
	// bare fences or none.
	require.Equal(t, "SELECT 1", StripFences("```\nSELECT 1\n```"))
	require.Equal(t, "SELECT 1", StripFences("```json\nSELECT 1\n```"))
	require.NotEqual(t, raw, StripFences(raw))
}

func TestStripFences_NoFences(t *testing.T) {
	require.Equal(t, "SELECT 1", StripFences("SELECT 1"))
}

func TestStripLineComments(t *testing.T) {
	sql := "-- leading comment\nSELECT 1\n  -- indented comment"
	require.Equal(t, "SELECT 1", StripLineComments(sql))
}

func TestStripLineComments_KeepsQuery(t *testing.T) {
	require.Equal(t, `SELECT "Revenue" FROM main`, StripLineComments(`SELECT "Revenue" FROM main`))
}

func TestGuardPipeline_FencedComment(t *testing.T) {
	raw := "```json\n-- generated\nSELECT 1\n```"
	cleaned := StripLineComments(StripFences(raw))
	require.Equal(t, "SELECT 1", cleaned)
	require.NoError(t, EnsureReadOnly(cleaned))
}
