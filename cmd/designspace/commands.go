package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"designspace/adapters/api"
	"designspace/adapters/postgres"
	"designspace/adapters/tabular"
	"designspace/app"
	"designspace/domain/paradigm"
	"designspace/internal/encoding"
	"designspace/internal/migration"
	"designspace/internal/report"
	"designspace/ports"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func (e *env) inputFile(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if e.cfg.Data.InputFile != "" {
		return e.cfg.Data.InputFile, nil
	}
	return "", fmt.Errorf("no input file: pass one or set DATA_FILE")
}

func (e *env) options() (app.AnalysisOptions, error) {
	return app.OptionsFromConfig(e.cfg.Analysis)
}

// repository connects to the configured database; both results are nil when
// no database is configured.
func (e *env) repository(ctx context.Context) (ports.RunRepository, *sqlx.DB, error) {
	if e.cfg.Database.URL == "" {
		return nil, nil, nil
	}
	db, err := postgres.Connect(ctx, e.cfg.Database.URL, e.cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewRunRepository(db), db, nil
}

// analyze runs the latent pipeline with the dense encoding, whatever the
// configured strategy; the configured strategy drives the long-format export.
func (e *env) analyze(ctx context.Context, file string, repo ports.RunRepository) (*app.AnalysisResult, error) {
	opts, err := e.options()
	if err != nil {
		return nil, err
	}
	opts.Encoding.Strategy = encoding.Dense

	table, err := tabular.NewReader(file, e.cfg.Data.Sheet, e.logger).ReadRows(ctx)
	if err != nil {
		return nil, err
	}
	return app.NewAnalysisService(e.schema, opts, repo, e.logger).Run(ctx, table)
}

func newAnalyzeCmd(e *env) *cobra.Command {
	var format string
	var long bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Run the latent analysis and write points, reconstructions and a report",
		Long: `Clean and classify every condition, encode and decompose the design space,
interpolate between paradigm centroids and reconstruct the synthetic conditions.

Example: designspace analyze conditions.xlsx --format xlsx --long`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			file, err := e.inputFile(args)
			if err != nil {
				return err
			}

			repo, db, err := e.repository(ctx)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			result, err := e.analyze(ctx, file, repo)
			if err != nil {
				return err
			}

			w := tabular.NewWriter(e.cfg.Data.OutputDir, tabular.Format(format), e.logger)
			headers, rows := tabular.PointsTable(result.Points)
			if err := w.WriteTable(ctx, "points", headers, rows); err != nil {
				return err
			}
			headers, rows = tabular.ReconstructionsTable(result.Reconstructions, e.schema.Columns())
			if err := w.WriteTable(ctx, "reconstructions", headers, rows); err != nil {
				return err
			}

			if len(result.Loadings) > 0 {
				headers, rows = tabular.LoadingsTable(result.Loadings, result.Fitted().FeatureNames())
				if err := w.WriteTable(ctx, "loadings", headers, rows); err != nil {
					return err
				}
			}

			md := report.Markdown(result.Document(""))
			if err := writeFile(filepath.Join(e.cfg.Data.OutputDir, "report.md"), []byte(md)); err != nil {
				return err
			}
			if err := writeFile(filepath.Join(e.cfg.Data.OutputDir, "report.html"), report.HTML(md)); err != nil {
				return err
			}

			if long {
				if err := e.writeLong(ctx, file, w); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d conditions, %d reconstructions, %d skipped pairs -> %s\n",
				result.Manifest.RunID, result.Manifest.Rows, len(result.Reconstructions), len(result.Skipped), e.cfg.Data.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(tabular.FormatCSV), "Output table format: csv or xlsx")
	cmd.Flags().BoolVar(&long, "long", false, "Also export the encoded matrix in long format for multi-view factor models")
	return cmd
}

func (e *env) writeLong(ctx context.Context, file string, w *tabular.Writer) error {
	opts, err := e.options()
	if err != nil {
		return err
	}
	table, err := tabular.NewReader(file, e.cfg.Data.Sheet, e.logger).ReadRows(ctx)
	if err != nil {
		return err
	}
	records, views, likelihoods, err := app.NewAnalysisService(e.schema, opts, nil, e.logger).
		LongFormat(ctx, table)
	if err != nil {
		return err
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.Sample, r.Feature, strconv.FormatFloat(r.Value, 'g', -1, 64), r.View, r.Group}
	}
	if err := w.WriteTable(ctx, "long", []string{"sample", "feature", "value", "view", "group"}, rows); err != nil {
		return err
	}

	lrows := make([][]string, len(views))
	for i := range views {
		lrows[i] = []string{views[i], likelihoods[i]}
	}
	return w.WriteTable(ctx, "likelihoods", []string{"view", "likelihood"}, lrows)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newClassifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file]",
		Short: "Print the paradigm of every condition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := e.inputFile(args)
			if err != nil {
				return err
			}
			opts, err := e.options()
			if err != nil {
				return err
			}
			table, err := tabular.NewReader(file, e.cfg.Data.Sheet, e.logger).ReadRows(cmd.Context())
			if err != nil {
				return err
			}

			rows, labels, err := app.NewAnalysisService(e.schema, opts, nil, e.logger).Prepare(table)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range rows {
				fmt.Fprintf(out, "%s\t%s\n", r.ID, labels[i])
			}
			counts := paradigm.Counts(labels)
			for _, p := range paradigm.All {
				if n := counts[p]; n > 0 {
					fmt.Fprintf(out, "# %s: %d\n", p, n)
				}
			}
			return nil
		},
	}
}

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [file]",
		Short: "Analyze a table and serve points, reconstructions and interpolation over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			file, err := e.inputFile(args)
			if err != nil {
				return err
			}
			repo, db, err := e.repository(ctx)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}

			result, err := e.analyze(ctx, file, repo)
			if err != nil {
				return err
			}

			gin.SetMode(e.cfg.Server.GinMode)
			return api.NewServer(result, repo, e.logger).ListenAndServe(ctx, ":"+e.cfg.Server.Port)
		},
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if e.cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			db, err := postgres.Connect(ctx, e.cfg.Database.URL, e.cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()

			if !status {
				return postgres.Migrate(ctx, db, e.logger)
			}

			runner, err := migration.NewRunner(e.logger)
			if err != nil {
				return err
			}
			states, err := runner.Status(ctx, db)
			if err != nil {
				return err
			}
			for _, s := range states {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s_%s: %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show migration status instead of applying")
	return cmd
}
