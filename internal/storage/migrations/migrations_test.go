package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.NotEmpty(t, pg)
	assert.Contains(t, pg[0].sql, "CREATE TABLE IF NOT EXISTS stars")

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)

	stmts, err := splitStatements(ch[0].sql)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS estimator_trials"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS trial_roc_points"))
}

func TestSplitStatements(t *testing.T) {
	stmts, err := splitStatements("-- comment\nSELECT 1;\n\nSELECT 'it''s';\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1", "SELECT 'it''s'"}, stmts)

	_, err = splitStatements("SELECT 'a;b';")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`lcc_trials`", quoteIdent("lcc_trials"))
	assert.Equal(t, "`a``b`", quoteIdent("a`b"))
}
