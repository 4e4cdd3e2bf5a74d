package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoices.owner_id, invoices.invoice_number")))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry")))
}

func TestDialect(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(Config{Type: "SQLite", Path: "test.db"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", PostgresURL(Config{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}))
}
