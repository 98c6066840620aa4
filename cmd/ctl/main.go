// ctl tareas de operación de la API mayorista: migraciones, corridas manuales del scheduler y
// alta inicial de una empresa.
//
// Uso:
//
//	go run ./cmd/ctl migrate up
//	go run ./cmd/ctl standing run-due
//	go run ./cmd/ctl seed --name "Distribuidora" --nit 900123456 --admin-email admin@d.co --admin-password ****
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Mayorista-api/pkg/config"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ctl",
		Short:         "Operación de Mayorista API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = cfg.App.LogLevel
			}
			log = logger.New(logger.Config{
				Env:     cfg.App.Env,
				Level:   level,
				Service: "ctl",
				Output:  os.Stderr,
			}).Zerolog()
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "", "nivel de log (por defecto LOG_LEVEL)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(standingCmd())
	rootCmd.AddCommand(creditCmd())
	rootCmd.AddCommand(quotesCmd())
	rootCmd.AddCommand(seedCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
