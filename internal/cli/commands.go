package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estatehub/estate-service/internal/config"
	"github.com/estatehub/estate-service/internal/domain"
	"github.com/estatehub/estate-service/internal/notify"
	"github.com/estatehub/estate-service/internal/observability"
	"github.com/estatehub/estate-service/internal/persistence"
	"github.com/estatehub/estate-service/internal/repository"
	"github.com/estatehub/estate-service/internal/service"
	"github.com/estatehub/estate-service/internal/worker"
)

// cmdEnv holds what a command needs; fields are filled on demand.
type cmdEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func setup(ctx context.Context, withDB bool) (*cmdEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	rt := &cmdEnv{cfg: cfg, logger: logger}
	if !withDB {
		return rt, nil
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	rt.pg = pg
	return rt, nil
}

func (rt *cmdEnv) close() {
	if rt.pg != nil {
		rt.pg.Close()
	}
	_ = rt.logger.Sync()
}

func (rt *cmdEnv) activityService() *service.ActivityService {
	pool := rt.pg.PoolHandle()
	return service.NewActivityService(service.ActivityDependencies{
		ActivityRepo: repository.NewActivityRepository(pool),
		PresenceRepo: repository.NewUserRepository(pool),
		Logger:       rt.logger,
	})
}

// MigrateCmd applies the SQL migrations.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.close()

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = rt.cfg.Postgres.MigrationsDir
			}
			applied, err := persistence.RunMigrations(cmd.Context(), rt.pg.PoolHandle(), dir, rt.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration file(s) from %s\n", applied, dir)
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}

// SweepPresenceCmd marks stale users offline once.
func SweepPresenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-presence",
		Short: "Mark users offline that have not been seen recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.close()

			threshold, _ := cmd.Flags().GetDuration("threshold")
			if threshold <= 0 {
				threshold = rt.cfg.Scheduler.OfflineThreshold()
			}
			affected, err := rt.activityService().SweepInactive(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d user(s) offline\n", affected)
			return nil
		},
	}
	cmd.Flags().Duration("threshold", 0, "Inactivity threshold (defaults to PRESENCE_OFFLINE_THRESHOLD_SECONDS)")
	return cmd
}

// SweepLogsCmd deletes old activity rows once.
func SweepLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep-logs",
		Short: "Delete activity logs older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.close()

			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = rt.cfg.Scheduler.RetentionDays
			}
			deleted, err := rt.activityService().SweepOldLogs(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d activity log(s)\n", deleted)
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "Retention in days (defaults to ACTIVITY_RETENTION_DAYS)")
	return cmd
}

// CreateAdminCmd seeds an ADMIN account.
func CreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN dashboard account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			rt, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.close()

			pool := rt.pg.PoolHandle()
			users := service.NewUserService(*rt.cfg, service.UserDependencies{
				UserRepo:     repository.NewUserRepository(pool),
				LandlordRepo: repository.NewLandlordRepository(pool),
			})
			user, err := users.Create(cmd.Context(), service.UserCreateInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     domain.UserRoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("name", "Administrator", "Display name")
	cmd.Flags().String("email", "", "Login email")
	cmd.Flags().String("password", "", "Login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// MailWorkerCmd consumes queued landlord emails and delivers them.
func MailWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail-worker",
		Short: "Deliver queued landlord emails over SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer rt.close()

			n := rt.cfg.Notification
			if n.AMQPURL == "" {
				return fmt.Errorf("NOTIFY_AMQP_URL is required")
			}
			var delivery notify.Transport = notify.NewLogTransport(rt.logger.Named("mail"))
			if addr := n.SMTPAddr(); addr != "" {
				delivery = notify.NewSMTPTransport(addr, n.SMTPHost, n.SMTPUsername, n.SMTPPassword)
			} else {
				rt.logger.Warn("SMTP_HOST not set; queued emails are only logged")
			}

			prefetch, _ := cmd.Flags().GetInt("prefetch")
			w := worker.NewMailWorker(worker.MailWorkerConfig{
				URL:      n.AMQPURL,
				Exchange: n.Exchange,
				Queue:    n.Queue,
				Prefetch: prefetch,
			}, delivery, rt.logger)

			backoff, _ := cmd.Flags().GetDuration("reconnect")
			for {
				err := w.Run(ctx)
				if ctx.Err() != nil {
					return nil
				}
				rt.logger.Error("mail worker stopped; reconnecting", zap.Error(err), zap.Duration("backoff", backoff))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoff):
				}
			}
		},
	}
	cmd.Flags().Int("prefetch", 10, "Unacknowledged deliveries held at once")
	cmd.Flags().Duration("reconnect", 5*time.Second, "Delay before reconnecting after a broker failure")
	return cmd
}
