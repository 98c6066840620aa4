package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/notify"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/email"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
)

// services casos de uso que corren las tareas programadas, sobre PostgreSQL.
type services struct {
	pool     *pgxpool.Pool
	redis    *redis.Client
	store    repository.Store
	notifier *notify.Service
	credit   *credit.UseCase
	quotes   *sales.QuoteUseCase
	standing *standing.UseCase
}

func (s *services) close() {
	s.notifier.Wait()
	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.pool.Close()
}

func openServices(ctx context.Context) (*services, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(pool)
	tx := postgres.NewTxRunner(pool)
	notifier := notify.NewService(store.Notifications, store.Users, email.NewSender(cfg.SMTP, log), log)
	creditUC := credit.NewUseCase(store, tx, notifier, log)
	quoteUC := sales.NewQuoteUseCase(store, tx, creditUC, notifier, sales.LinkConfig{
		Secret:  cfg.JWT.Secret,
		Issuer:  cfg.JWT.Issuer,
		BaseURL: cfg.Links.PublicBaseURL,
		TTL:     cfg.Links.MagicLinkTTL,
	}, log)

	var (
		locker standing.Locker = cache.NewMemoryLocker()
		rdb    *redis.Client
	)
	if cfg.Redis.Addr != "" {
		if rdb, err = cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			pool.Close()
			return nil, err
		}
		locker = cache.NewRedisLocker(rdb, "mayorista:lock:")
	}
	return &services{
		pool:     pool,
		redis:    rdb,
		store:    store,
		notifier: notifier,
		credit:   creditUC,
		quotes:   quoteUC,
		standing: standing.NewUseCase(store, tx, quoteUC, creditUC, notifier, locker, cfg.Scheduler.Workers, log),
	}, nil
}

func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *services) error) error {
	ctx := cmd.Context()
	s, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

func standingCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "standing", Short: "Pedidos recurrentes"}
	cmd.AddCommand(&cobra.Command{
		Use:   "run-due",
		Short: "Genera las cotizaciones de los pedidos recurrentes vencidos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				res, err := s.standing.RunDue(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "procesados=%d generados=%d pendientes=%d retenidos=%d fallidos=%d omitidos=%d\n",
					res.Processed, res.Generated, res.Pending, res.OnHold, res.Failed, res.Skipped)
				return nil
			})
		},
	})
	return cmd
}

func creditCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "credit", Short: "Crédito de clientes"}
	cmd.AddCommand(&cobra.Command{
		Use:   "scan-overdue",
		Short: "Suspende los créditos con cargos vencidos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				n, err := s.credit.ScanOverdue(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "créditos suspendidos: %d\n", n)
				return nil
			})
		},
	})
	return cmd
}

func quotesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "quotes", Short: "Cotizaciones"}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Marca como vencidas las cotizaciones enviadas fuera de vigencia",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				n, err := s.quotes.ExpireDue(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cotizaciones vencidas: %d\n", n)
				return nil
			})
		},
	})
	return cmd
}
