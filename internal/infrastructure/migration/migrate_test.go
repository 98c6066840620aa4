package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/x?sslmode=disable", driverURL("postgres://u:p@db:5432/x?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/x", driverURL("postgresql://u@db/x"))
	assert.Equal(t, "pgx5://u@db/x", driverURL("pgx5://u@db/x"))
}

func TestMigracionesEmbebidas_Pares(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "cada migración up tiene su down")

	initSQL, err := fs.ReadFile(files, "sql/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(initSQL), "WHERE status <> 'failed'")
}
