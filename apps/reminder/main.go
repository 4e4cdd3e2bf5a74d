package main

import (
	"github.com/smallbiznis/invoicedesk/internal/app"
	"github.com/smallbiznis/invoicedesk/internal/reminder"
	"go.uber.org/fx"
)

// A standalone sweep worker for deployments that run the API with
// REMINDER_ENABLED=false. Replicas coordinate through the redis lock.
func main() {
	fx.New(
		app.Core,
		app.Domain,
		reminder.Module,
	).Run()
}
