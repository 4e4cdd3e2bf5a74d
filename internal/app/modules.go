// Package app groups the fx modules shared by every binary.
package app

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/audit"
	"github.com/smallbiznis/invoicedesk/internal/client"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/company"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice"
	"github.com/smallbiznis/invoicedesk/internal/migration"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	"github.com/smallbiznis/invoicedesk/internal/project"
	"github.com/smallbiznis/invoicedesk/internal/providers"
	"github.com/smallbiznis/invoicedesk/internal/storage"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"go.uber.org/fx"
)

// Core is configuration, telemetry, the database and id generation.
var Core = fx.Options(
	config.Module,
	observability.Module,
	fx.Provide(RegisterSnowflake),
	db.Module,
	clock.Module,
	migration.Module,
)

// Domain is every service needed to load, render and deliver invoices.
var Domain = fx.Options(
	audit.Module,
	client.Module,
	project.Module,
	company.Module,
	storage.Module,
	providers.Module,
	invoice.Module,
)

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
