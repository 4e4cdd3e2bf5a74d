package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/apikey"
	apikeydomain "github.com/smallbiznis/invoicedesk/internal/apikey/domain"
	"github.com/smallbiznis/invoicedesk/internal/app"
	"github.com/smallbiznis/invoicedesk/internal/audit"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/reminder"
	"github.com/smallbiznis/invoicedesk/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const startTimeout = 30 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The core module migrates while the graph is built.
		return runOnce(cmd.Context(), fx.Options(app.Core))
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue invoices and send due reminders once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(),
			fx.Options(
				app.Core,
				app.Domain,
				fx.Provide(reminder.NewRedisClient, reminder.NewLocker, reminder.New),
			),
			fx.Invoke(func(lc fx.Lifecycle, sched *reminder.Scheduler) {
				lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
					result, ran, err := sched.RunOnce(ctx)
					if err != nil {
						return err
					}
					if !ran {
						fmt.Fprintln(cmd.OutOrStdout(), "sweep skipped: another worker holds the lock")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "marked overdue: %d, reminded: %d, failed: %d\n",
						result.MarkedOverdue, result.Reminded, result.Failed)
					return nil
				}})
			}),
		)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo company, client and project for an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ownerRaw, _ := cmd.Flags().GetString("owner")
		ownerID, err := parseOwnerID(ownerRaw)
		if err != nil {
			return err
		}

		return runOnce(cmd.Context(),
			fx.Options(app.Core),
			fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, node *snowflake.Node, clk clock.Clock) {
				lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
					result, err := seed.EnsureDemoData(ctx, db, node, ownerID, clk.Now().UTC())
					if err != nil {
						return fmt.Errorf("failed to seed: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "client_id:  %s\nproject_id: %s\n", result.ClientID, result.ProjectID)
					return nil
				}})
			}),
		)
	},
}

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apiKeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key for an owner",
	Long:  `Create prints the raw key once. Store it; only its hash is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ownerRaw, _ := cmd.Flags().GetString("owner")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		ownerID, err := parseOwnerID(ownerRaw)
		if err != nil {
			return err
		}

		return runOnce(cmd.Context(),
			fx.Options(app.Core, audit.Module, apikey.Module),
			fx.Invoke(func(lc fx.Lifecycle, svc apikeydomain.Service) {
				lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
					resp, err := svc.CreateForOwner(ctx, ownerID, apikeydomain.CreateRequest{Name: name, Role: role})
					if err != nil {
						return fmt.Errorf("failed to create api key: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "key_id:  %s\nrole:    %s\napi_key: %s\n", resp.KeyID, resp.Role, resp.APIKey)
					return nil
				}})
			}),
		)
	},
}

func init() {
	seedCmd.Flags().String("owner", "", "owner id (required)")
	_ = seedCmd.MarkFlagRequired("owner")

	apiKeyCreateCmd.Flags().String("owner", "", "owner id (required)")
	apiKeyCreateCmd.Flags().String("name", "cli", "key name")
	apiKeyCreateCmd.Flags().String("role", apikeydomain.RoleOwner, "owner or readonly")
	_ = apiKeyCreateCmd.MarkFlagRequired("owner")
	apiKeyCmd.AddCommand(apiKeyCreateCmd)
}

func parseOwnerID(raw string) (snowflake.ID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid owner id %q", raw)
	}
	return snowflake.ID(id), nil
}

// runOnce starts an fx app for the side effects of its start hooks and
// stops it again.
func runOnce(ctx context.Context, opts ...fx.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	application := fx.New(append(opts, fx.NopLogger)...)
	if err := application.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		return err
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	return application.Stop(stopCtx)
}
