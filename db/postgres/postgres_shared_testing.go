package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/db"
)

var TESTONLY_Config = db.Config{
	PGHost:     "localhost",
	PGPort:     5432,
	PGUser:     "postgres",
	PGPassword: "example",
	PGName:     "postgres",
}

// TESTONLY_SetupAndCleanup connects to the local test database and drops all
// tables created by previous runs.
func TESTONLY_SetupAndCleanup(t *testing.T) *PostgresDB {
	assert := assert.New(t)
	pg, err := NewPostgresDB(TESTONLY_Config)
	if !assert.NoError(err) {
		t.FailNow()
	}
	pg.db.Exec(`DROP TABLE IF EXISTS cooccurrences CASCADE`)
	pg.db.Exec(`DROP TABLE IF EXISTS entities CASCADE`)
	pg, err = NewPostgresDB(TESTONLY_Config)
	if !assert.NoError(err) {
		t.FailNow()
	}
	t.Cleanup(func() { pg.Close() })
	return pg
}
