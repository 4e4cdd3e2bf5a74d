package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	auditdomain "github.com/smallbiznis/invoicedesk/internal/audit/domain"
	clientdomain "github.com/smallbiznis/invoicedesk/internal/client/domain"
	companydomain "github.com/smallbiznis/invoicedesk/internal/company/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	projectdomain "github.com/smallbiznis/invoicedesk/internal/project/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{
		&clientdomain.Client{},
		&projectdomain.Project{},
		&companydomain.CompanyProfile{},
		&companydomain.InvoiceSettings{},
		&invoicedomain.Invoice{},
		&apikeydomain.APIKey{},
		&auditdomain.AuditLog{},
	}
}

// Migrate applies the versioned SQL migrations on postgres and falls back to
// gorm AutoMigrate for the other dialects.
func Migrate(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if strings.EqualFold(strings.TrimSpace(dbType), db.TypePostgres) {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func RunMigrations(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	src, err := newSource()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB.

	return nil
}

func newSource() (source.Driver, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	return src, nil
}
