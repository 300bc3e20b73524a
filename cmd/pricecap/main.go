package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/fs"
	"github.com/fwojciec/pricecap/goquery"
	"github.com/fwojciec/pricecap/heuristic"
	pchttp "github.com/fwojciec/pricecap/http"
	"github.com/fwojciec/pricecap/rod"
	pcslog "github.com/fwojciec/pricecap/slog"
	"github.com/fwojciec/pricecap/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoPrice):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// YAML file supplying flag defaults. Missing files are ignored.
	ConfigPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Stdin is read by "extract -" and "batch -". Defaults to os.Stdin.
	Stdin io.Reader

	// Services for end-to-end testing. When set they replace the real
	// implementations and are not closed by Main.
	Fetcher  pricecap.Fetcher
	Captures pricecap.CaptureService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
		Stdin:      os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	options := []kong.Option{
		kong.Name("pricecap"),
		kong.Description("Extract the total price a visitor would pay from a web page."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	}
	if m.ConfigPath != "" {
		options = append(options, kong.Configuration(YAMLConfig, m.ConfigPath))
	}
	parser, err := kong.New(cli, options...)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricecap --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd, _, _ := strings.Cut(kongCtx.Command(), " ")

	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var tier pricecap.PriceTier = heuristic.NewEngine(goquery.NewScanner())
	if deps.Logger != nil {
		tier = pcslog.NewLoggingExtractor(tier, deps.Logger)
	}
	deps.Extractor = heuristic.NewChain(tier)
	deps.PageTypes = goquery.NewDetector()

	var flags *ExtractionFlags
	switch cmd {
	case "extract":
		flags = &cli.Extract.ExtractionFlags
	case "batch":
		flags = &cli.Batch.ExtractionFlags
	}

	if flags != nil && (cmd == "batch" || isURL(cli.Extract.Source)) {
		fetcher, err := m.openFetcher(flags)
		if err != nil {
			if flags.Render {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			}
			return fmt.Errorf("failed to start fetcher: %w", err)
		}
		if m.Fetcher == nil {
			defer fetcher.Close()
		}
		if deps.Logger != nil {
			fetcher = pcslog.NewLoggingFetcher(fetcher, deps.Logger)
		}
		deps.Fetcher = fetcher
	}

	if cmd == "history" || cmd == "correct" || (flags != nil && flags.Save) {
		captures, err := m.openCaptures()
		if err != nil {
			fmt.Fprintf(stderr, "Hint: Set PRICECAP_DB to use a different database path\n")
			return err
		}
		defer m.Close()
		if deps.Logger != nil {
			captures = pcslog.NewLoggingCaptureService(captures, deps.Logger)
		}
		deps.Captures = captures
	}

	if flags != nil && flags.SnapshotDir != "" {
		deps.Snapshots = fs.NewSnapshotWriter(flags.SnapshotDir)
	}

	return kongCtx.Run(deps)
}

// openFetcher returns the injected fetcher or builds one from flags.
func (m *Main) openFetcher(flags *ExtractionFlags) (pricecap.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if flags.Render {
		return rod.NewFetcher(rod.WithFetchTimeout(flags.Timeout))
	}
	return pchttp.NewFetcher(pchttp.WithTimeout(flags.Timeout)), nil
}

// openCaptures returns the injected capture service or opens the database.
func (m *Main) openCaptures() (pricecap.CaptureService, error) {
	if m.Captures != nil {
		return m.Captures, nil
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	return sqlite.NewCaptureService(m.DB), nil
}

func defaultDBPath() string {
	if path := os.Getenv("PRICECAP_DB"); path != "" {
		return path
	}
	dir, ok := stateDir()
	if !ok {
		return "pricecap.db"
	}
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricecap.db")
}

func defaultConfigPath() string {
	if path := os.Getenv("PRICECAP_CONFIG"); path != "" {
		return path
	}
	dir, ok := stateDir()
	if !ok {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func stateDir() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".pricecap"), true
}
