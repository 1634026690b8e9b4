package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pet-lost-found/internal/bootstrap"
	"pet-lost-found/internal/config"
	"pet-lost-found/internal/maintenance"
	"pet-lost-found/internal/middleware"
)

var (
	// App compartida por los subcomandos; se arma en PersistentPreRunE.
	app    *bootstrap.App
	runner *maintenance.Runner
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "petfinderctl",
		Short:         "Tareas operativas de pet-lost-found",
		Long:          `Herramientas de mantenimiento sobre el record store y el bucket de imágenes, con la misma configuración (env + PETFINDER_CONFIG) que la API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app, err = bootstrap.New(cmd.Context(), cfg, bootstrap.Overrides{LogOutput: os.Stderr})
			if err != nil {
				return err
			}
			runner = maintenance.NewRunner(maintenance.Deps{
				Reports:   app.Reports,
				Matching:  app.Matching,
				Matches:   app.MatchRepo,
				Finder:    app.Finder,
				Bucket:    app.Bucket,
				Extractor: app.Extractor,
				Log:       app.Log,
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	rootCmd.AddCommand(createMigrateCmd())
	rootCmd.AddCommand(createRematchCmd())
	rootCmd.AddCommand(createDecideCmd())
	rootCmd.AddCommand(createCleanupCmd())
	rootCmd.AddCommand(createIngestCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema SQL del driver configurado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := maintenance.Migrate(cmd.Context(), app.Config.StoreDriver, app.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", app.Config.StoreDriver)
			return nil
		},
	}
}

func createRematchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rematch [report-id]",
		Short: "Vuelve a buscar matches para un reporte activo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := runner.Rematch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new match(es)\n", len(created))
			for _, m := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s lost=%s found=%s\n", m.ID, m.LostReportID, m.FoundReportID)
			}
			return nil
		},
	}
}

func createDecideCmd() *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "decide [match-id] [accept|reject]",
		Short: "Acepta o rechaza un match pendiente como operador",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := middleware.WithActor(cmd.Context(), operator)
			m, err := runner.Decide(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s by %s\n", m.ID, m.Status, m.DecidedBy)
			return nil
		},
	}

	cmd.Flags().StringVar(&operator, "as", "operator", "identidad registrada como decided_by")
	return cmd
}

func createCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-automated",
		Short: "Borra matches de reportes automatizados y los devuelve a active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runner.CleanupAutomated(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reports=%d deleted_matches=%d reopened=%d\n", res.Reports, res.DeletedMatches, res.Reopened)
			return nil
		},
	}
}

func createIngestCmd() *cobra.Command {
	var opts maintenance.IngestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Crea reportes Found automatizados a partir de imágenes del bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ExtractTimeout = app.Config.ExtractionTimeout
			res, err := runner.Ingest(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d skipped=%d fallbacks=%d failed=%d\n", res.Created, res.Skipped, res.Fallbacks, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", maintenance.DefaultIngestPrefix, "prefijo de objetos a recorrer")
	cmd.Flags().IntVar(&opts.Limit, "limit", maintenance.DefaultIngestLimit, "máximo de reportes a crear")
	cmd.Flags().StringVar(&opts.UserID, "user", maintenance.DefaultIngestUser, "usuario automatizado dueño de los reportes")
	return cmd
}
