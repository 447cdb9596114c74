package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/vegasq/insightql/cache"
	"github.com/vegasq/insightql/dataset"
	"github.com/vegasq/insightql/internal/logging"
	"github.com/vegasq/insightql/output"
	"github.com/vegasq/insightql/query"
	"github.com/vegasq/insightql/reader"
)

// Exit codes. Query failures map the engine's status to a distinct code.
const (
	exitOK          = 0
	exitFailure     = 1
	exitSyntax      = 2 // 400
	exitDataset     = 3 // 424
	exitNotFound    = 4 // 404
	defaultDataDir  = "./data"
	defaultFormat   = output.FormatJSON
	messageSuccess  = "dataset successfully added"
	messageReplaced = "dataset successfully added; id already exists"
)

type options struct {
	dataDir   string
	query     string
	queryFile string
	format    string
	add       string
	remove    string
	export    string
	list      bool
	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("insightql", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.dataDir, "data", defaultDataDir, "Dataset cache directory")
	fs.StringVar(&opts.query, "q", "", "Query JSON (e.g., '{\"WHERE\":{},\"OPTIONS\":{\"COLUMNS\":[\"rooms_name\"]}}')")
	fs.StringVar(&opts.queryFile, "file", "", "Read the query from a file (- for stdin)")
	fs.StringVar(&opts.format, "f", defaultFormat, "Output format: "+strings.Join(output.Formats(), ", "))
	fs.StringVar(&opts.add, "add", "", "Ingest parquet files into the cache: id=path (path may be a glob)")
	fs.StringVar(&opts.remove, "remove", "", "Remove a cached dataset by id")
	fs.StringVar(&opts.export, "export", "", "Export a cached dataset to parquet: id=path")
	fs.BoolVar(&opts.list, "list", false, "List cached datasets")
	fs.StringVar(&opts.logLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: insightql [options]\n\n")
		fmt.Fprintf(stderr, "Query cached course and room datasets with JSON queries.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  insightql -add courses=sections/*.parquet\n")
		fmt.Fprintf(stderr, "  insightql -add rooms=rooms.parquet\n")
		fmt.Fprintf(stderr, "  insightql -list -f table\n")
		fmt.Fprintf(stderr, "  insightql -file query.json -f csv\n")
		fmt.Fprintf(stderr, "  insightql -remove rooms\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	if err := validate(opts, fs.NArg()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return exitFailure
	}

	logger, err := logging.Init(stderr, logging.Config{Level: opts.logLevel, Format: opts.logFormat})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	c, err := cache.New(opts.dataDir, cache.Options{Logger: logger})
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}

	switch {
	case opts.add != "":
		return addDataset(c, opts.add, stdout, logger)
	case opts.remove != "":
		return removeDataset(c, opts.remove, stdout, logger)
	case opts.export != "":
		return exportDataset(c, opts.export, stdout, logger)
	case opts.list:
		return listDatasets(c, opts.format, stdout, logger)
	default:
		return performQuery(c, opts, stdin, stdout, logger)
	}
}

// validate checks flag values and combinations before any work is done.
func validate(opts options, nargs int) error {
	if nargs > 0 {
		return fmt.Errorf("unexpected arguments")
	}

	actions := 0
	for _, set := range []bool{opts.add != "", opts.remove != "", opts.export != "", opts.list, opts.query != "" || opts.queryFile != ""} {
		if set {
			actions++
		}
	}
	switch {
	case actions == 0:
		return fmt.Errorf("one of -q, -file, -add, -remove, -export or -list is required")
	case actions > 1:
		return fmt.Errorf("-q/-file, -add, -remove, -export and -list cannot be used together")
	}

	if opts.query != "" && opts.queryFile != "" {
		return fmt.Errorf("-q and -file cannot be used together")
	}
	if _, err := output.New(opts.format, io.Discard); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(opts.logLevel); err != nil {
		return err
	}
	return nil
}

func performQuery(c *cache.Cache, opts options, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	data, err := readQuery(opts, stdin)
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}

	engine := query.NewEngine(c, query.Options{Logger: logger})
	res, err := engine.Perform(data)
	if err != nil {
		return fail(stdout, logger, err, exitCode(query.StatusCode(err)))
	}

	formatter, err := output.New(opts.format, stdout)
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}
	if err := formatter.Format(res.Columns, res.Rows); err != nil {
		logger.Error("failed to write result", "error", err)
		return exitFailure
	}
	return exitOK
}

func readQuery(opts options, stdin io.Reader) ([]byte, error) {
	switch opts.queryFile {
	case "":
		return []byte(opts.query), nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(opts.queryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file: %w", err)
		}
		return data, nil
	}
}

func addDataset(c *cache.Cache, target string, stdout io.Writer, logger *slog.Logger) int {
	kind, path, err := parseTarget(target)
	if err != nil {
		return fail(stdout, logger, err, exitSyntax)
	}

	records, err := reader.ReadDataset(path, kind)
	if err != nil {
		return fail(stdout, logger, err, exitSyntax)
	}
	if len(records) == 0 {
		return fail(stdout, logger, fmt.Errorf("no valid %s records in %s", kind.ID(), path), exitSyntax)
	}

	existed, err := c.Save(kind, records)
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}

	msg := messageSuccess
	if existed {
		msg = messageReplaced
	}
	if err := output.WriteMessage(stdout, msg); err != nil {
		return exitFailure
	}
	return exitOK
}

func removeDataset(c *cache.Cache, id string, stdout io.Writer, logger *slog.Logger) int {
	kind, err := dataset.ParseKind(id)
	if err != nil {
		return fail(stdout, logger, err, exitSyntax)
	}

	if err := c.Delete(kind); err != nil {
		if errors.Is(err, dataset.ErrNotCached) {
			return fail(stdout, logger, err, exitNotFound)
		}
		return fail(stdout, logger, err, exitFailure)
	}

	if err := output.WriteMessage(stdout, fmt.Sprintf("database %s deleted", kind.ID())); err != nil {
		return exitFailure
	}
	return exitOK
}

func exportDataset(c *cache.Cache, target string, stdout io.Writer, logger *slog.Logger) int {
	kind, path, err := parseTarget(target)
	if err != nil {
		return fail(stdout, logger, err, exitSyntax)
	}

	records, err := c.Load(kind)
	if err != nil {
		if errors.Is(err, dataset.ErrNotCached) {
			return fail(stdout, logger, err, exitNotFound)
		}
		return fail(stdout, logger, err, exitFailure)
	}

	if err := reader.WriteDataset(path, kind, records); err != nil {
		return fail(stdout, logger, err, exitFailure)
	}

	if err := output.WriteMessage(stdout, fmt.Sprintf("exported %d %s records to %s", len(records), kind.ID(), path)); err != nil {
		return exitFailure
	}
	return exitOK
}

func listDatasets(c *cache.Cache, format string, stdout io.Writer, logger *slog.Logger) int {
	kinds, err := c.List()
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}

	rows := make([]map[string]interface{}, 0, len(kinds))
	for _, kind := range kinds {
		records, err := c.Load(kind)
		if err != nil {
			return fail(stdout, logger, err, exitFailure)
		}
		rows = append(rows, map[string]interface{}{"id": kind.ID(), "records": int64(len(records))})
	}

	formatter, err := output.New(format, stdout)
	if err != nil {
		return fail(stdout, logger, err, exitFailure)
	}
	if err := formatter.Format([]string{"id", "records"}, rows); err != nil {
		logger.Error("failed to write dataset list", "error", err)
		return exitFailure
	}
	return exitOK
}

// parseTarget splits "id=path".
func parseTarget(target string) (dataset.Kind, string, error) {
	id, path, ok := strings.Cut(target, "=")
	if !ok || path == "" {
		return dataset.KindNone, "", fmt.Errorf("expected id=path, got %q", target)
	}
	kind, err := dataset.ParseKind(id)
	if err != nil {
		return dataset.KindNone, "", err
	}
	return kind, path, nil
}

// fail writes the error envelope and returns code.
func fail(stdout io.Writer, logger *slog.Logger, err error, code int) int {
	logger.Debug("command failed", "error", err, "exit_code", code)
	if werr := output.WriteError(stdout, err); werr != nil {
		logger.Error("failed to write error", "error", werr)
	}
	return code
}

func exitCode(status int) int {
	switch status {
	case http.StatusOK:
		return exitOK
	case http.StatusBadRequest:
		return exitSyntax
	case http.StatusFailedDependency:
		return exitDataset
	default:
		return exitFailure
	}
}
