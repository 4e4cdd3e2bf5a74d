package main

import (
	"github.com/smallbiznis/invoicedesk/internal/apikey"
	"github.com/smallbiznis/invoicedesk/internal/app"
	"github.com/smallbiznis/invoicedesk/internal/authorization"
	"github.com/smallbiznis/invoicedesk/internal/publicinvoice"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"github.com/smallbiznis/invoicedesk/internal/reminder"
	"github.com/smallbiznis/invoicedesk/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		app.Core,
		app.Domain,

		// API surface
		apikey.Module,
		authorization.Module,
		publicinvoice.Module,
		ratelimit.Module,
		server.Module,

		// Runs in-process unless REMINDER_ENABLED=false; see apps/reminder.
		reminder.Module,
	).Run()
}
