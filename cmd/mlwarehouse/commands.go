package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tordrt/mlwarehouse"
	"github.com/tordrt/mlwarehouse/internal/fixture"
	"github.com/tordrt/mlwarehouse/internal/schema"
	"github.com/tordrt/mlwarehouse/internal/warehouse"
	"github.com/tordrt/mlwarehouse/pkg/progress"
)

const dateLayout = "2006-01-02"

var (
	checkFormat   string
	checkModel    string
	checkTables  string
	checkExclude []string
	ignoreTypes  []string
	noProgress   bool

	describeFormat  string
	describeTables  string
	describeExclude []string
	outputFile      string
	outputDir       string

	docsFormat    string
	docsOutputDir string

	sinceDate string

	fixtureDir   string
	createTables bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the live database with the declared schema",
	Long: `Compare the live database with the declared schema and print every mismatch.
The command exits with status 2 when the database does not conform.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Document the live database schema",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Document the declared schema with column help text",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

var recentCmd = &cobra.Command{
	Use:       "recent {ont|pacbio|fluidigm}",
	Short:     "List runs updated since a date",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"ont", "pacbio", "fluidigm"},
	RunE:      runRecent,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show sequenced bases per month for runs that passed QC",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var loadFixturesCmd = &cobra.Command{
	Use:   "load-fixtures",
	Short: "Load a directory of YAML fixtures into the database",
	Args:  cobra.NoArgs,
	RunE:  runLoadFixtures,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format: text, markdown or yaml")
	checkCmd.Flags().StringVar(&checkModel, "model", "", "YAML model to check against (default: compiled-in declarations)")
	checkCmd.Flags().StringVarP(&checkTables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	checkCmd.Flags().StringSliceVar(&checkExclude, "exclude", nil, "Tables to leave out of the check")
	checkCmd.Flags().StringSliceVar(&ignoreTypes, "ignore-type", nil, "table.column whose type is not compared (repeatable)")
	checkCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Do not draw a progress bar")

	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "text", "Output format: text or markdown")
	describeCmd.Flags().StringVarP(&describeTables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	describeCmd.Flags().StringSliceVar(&describeExclude, "exclude", nil, "Tables to leave out")
	describeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	describeCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")

	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "markdown", "Output format: text or markdown")
	docsCmd.Flags().StringVarP(&docsOutputDir, "output-dir", "d", "", "Output directory for multi-file output")

	recentCmd.Flags().StringVar(&sinceDate, "since", "", "Only rows updated after this date, YYYY-MM-DD (default: 14 days ago)")
	statsCmd.Flags().StringVar(&sinceDate, "since", "", "First date to count, YYYY-MM-DD (default: one year ago)")

	loadFixturesCmd.Flags().StringVar(&fixtureDir, "dir", "", "Fixture directory (default: fixtures.dir from config)")
	loadFixturesCmd.Flags().BoolVar(&createTables, "create-tables", false, "Create the declared tables before loading")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url, err := resolveDatabaseURL(cfg)
	if err != nil {
		return err
	}

	modelPath := checkModel
	if modelPath == "" {
		modelPath = cfg.Check.Model
	}
	opts := &mlwarehouse.Options{
		Tables:        parseTableList(checkTables),
		ExcludeTables: append(append([]string(nil), cfg.Check.ExcludeTables...), checkExclude...),
		IgnoreColumns: append(append([]string(nil), cfg.Check.IgnoreColumns...), ignoreTypes...),
		SchemaName:    connectionSchema(cfg),
		Logger:        newLogger(),
	}
	if modelPath != "" {
		model, err := loadModel(modelPath)
		if err != nil {
			return err
		}
		opts.Model = model
	}

	if !noProgress {
		model := opts.Model
		if model == nil {
			model = warehouse.Model()
		}
		bar := progress.NewBar(progressTotal(model, opts.Tables, opts.ExcludeTables), "checking")
		defer bar.Finish()
		opts.Progress = bar.Step
	}

	report, err := mlwarehouse.CheckConformance(ctx, url, opts)
	if err != nil {
		return err
	}

	if err := mlwarehouse.FormatReport(report, &mlwarehouse.OutputOptions{
		Writer: cmd.OutOrStdout(),
		Format: checkFormat,
	}); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if !report.Empty() {
		return errNonConformant
	}
	return nil
}

// progressTotal counts the declared tables a check will step through
func progressTotal(model *schema.Model, tables, exclude []string) int {
	skip := make(map[string]bool, len(exclude))
	for _, t := range exclude {
		skip[strings.TrimSpace(t)] = true
	}
	only := make(map[string]bool, len(tables))
	for _, t := range tables {
		only[t] = true
	}

	total := 0
	for _, name := range model.Names() {
		if skip[name] || (len(only) > 0 && !only[name]) {
			continue
		}
		total++
	}
	return total
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url, err := resolveDatabaseURL(cfg)
	if err != nil {
		return err
	}

	writer := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	return mlwarehouse.ExtractAndFormat(ctx, url,
		&mlwarehouse.Options{
			Tables:        parseTableList(describeTables),
			ExcludeTables: describeExclude,
			SchemaName:    connectionSchema(cfg),
		},
		&mlwarehouse.OutputOptions{
			Writer:    writer,
			OutputDir: outputDir,
			Format:    describeFormat,
		})
}

func runDocs(cmd *cobra.Command, args []string) error {
	return mlwarehouse.FormatEntities(warehouse.Model().Entities(), &mlwarehouse.OutputOptions{
		Writer:    cmd.OutOrStdout(),
		OutputDir: docsOutputDir,
		Format:    docsFormat,
	})
}

func runRecent(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	since, err := parseSince(sinceDate, time.Now().AddDate(0, 0, -14))
	if err != nil {
		return err
	}

	queries, closeFn, err := openQueries(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch args[0] {
	case "ont":
		runs, err := queries.RecentONT(ctx, since)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "EXPERIMENT\tSLOT\tSAMPLE\tSTUDY\tTAG")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
				r.ExperimentName, r.InstrumentSlot, r.SampleName.String, r.StudyID, r.Identifier.String)
		}
	case "pacbio":
		runs, err := queries.RecentPacBio(ctx, since)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "RUN\tWELL\tPLATE\tLIBRARY\tTAG\tUPDATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.RunName, r.WellLabel, r.PlateBarcode, r.LibraryTubeName, r.Identifier.String,
				latest(r.SampleUpdated, r.StudyUpdated).Format(time.DateTime))
		}
	case "fluidigm":
		wells, err := queries.RecentFluidigm(ctx, since)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "PLATE\tWELL\tSAMPLE\tSTUDY\tCONSENT WITHDRAWN\tRECORDED")
		for _, well := range wells {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%s\n",
				well.PlateBarcode, well.WellLabel, well.SampleName.String, well.StudyID,
				well.ConsentWithdrawn, well.RecordedAt.Format(time.DateTime))
		}
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	since, err := parseSince(sinceDate, time.Now().AddDate(-1, 0, 0))
	if err != nil {
		return err
	}

	queries, closeFn, err := openQueries(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	months, err := queries.SequencedBasesByMonth(ctx, since)
	if err != nil {
		return err
	}
	return writeMonthlyBases(cmd.OutOrStdout(), months)
}

func writeMonthlyBases(out io.Writer, months []warehouse.MonthlyBases) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MONTH\tRUNS\tGBASES\t")
	for _, m := range months {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t\n", m.Month, m.Runs, float64(m.Bases)/1e9)
	}
	return w.Flush()
}

func runLoadFixtures(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	url, err := resolveDatabaseURL(cfg)
	if err != nil {
		return err
	}

	dir := fixtureDir
	if dir == "" {
		dir = cfg.Fixtures.Dir
	}
	if dir == "" {
		return fmt.Errorf("no fixture directory given (use --dir or fixtures.dir)")
	}

	conn, err := mlwarehouse.Connect(ctx, url, connectionSchema(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	log := newLogger()
	model := warehouse.Model()
	if createTables {
		stmts, err := model.CreateStatements(conn.Dialect)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create tables: %w", err)
			}
		}
		log.Infof("Created %d tables", model.Len())
	}

	loader, err := fixture.NewLoader(sqlDB, model, conn.Dialect, log)
	if err != nil {
		return err
	}
	n, err := loader.LoadDir(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows from %s\n", n, dir)
	return nil
}

// openQueries connects and binds the reporting queries; the returned
// function closes the connection
func openQueries(ctx context.Context) (*warehouse.Queries, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	url, err := resolveDatabaseURL(cfg)
	if err != nil {
		return nil, nil, err
	}

	conn, err := mlwarehouse.Connect(ctx, url, connectionSchema(cfg))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := conn.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close connection: %v\n", err)
		}
	}

	sqlDB, err := conn.DB()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	queries, err := warehouse.NewQueries(sqlDB, conn.Dialect)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return queries, closeFn, nil
}

func parseSince(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
