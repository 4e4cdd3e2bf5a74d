package providers

import (
	"github.com/smallbiznis/invoicedesk/internal/providers/email"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
)
