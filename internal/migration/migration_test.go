package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/smallbiznis/invoicedesk/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AutoMigratesNonPostgres(t *testing.T) {
	conn := dbtest.Open(t)
	require.NoError(t, Migrate(conn, db.TypeSQLite))

	for _, table := range []string{"clients", "projects", "company_profiles", "invoice_settings", "invoices", "api_keys", "audit_logs"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestMigrate_RequiresHandle(t *testing.T) {
	assert.Error(t, Migrate(nil, db.TypeSQLite))
	assert.Error(t, RunMigrations(nil))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)

	_, err = newSource()
	assert.NoError(t, err)
}
