// vidcard runs one enrichment pass over an HTML file or stdin and writes
// the result to stdout.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/iconidentify/vidcard/internal/config"
	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/repository"
	"github.com/iconidentify/vidcard/internal/service"
	"github.com/iconidentify/vidcard/pkg/crypto"
	"github.com/iconidentify/vidcard/pkg/youtube"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type options struct {
	configPath string
	dbPath     string
	mode       string
	output     string
	input      string
	document   bool
	promptKey  bool
	noStore    bool
	verbose    bool
	version    bool

	// Per-run overrides; nil keeps the stored value.
	thumbnail   *bool
	channelIcon *bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("vidcard", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.dbPath, "db", "", "Settings database path (overrides config)")
	fs.StringVar(&opts.mode, "mode", string(domain.ModeStructural), "Enrichment mode: structural or textual")
	fs.StringVar(&opts.output, "o", "", "Write output to this file instead of stdout")
	fs.BoolVar(&opts.document, "document", false, "Parse input as a full HTML document (structural only)")
	fs.BoolVar(&opts.promptKey, "prompt-key", false, "Prompt for a YouTube API key for this run (not saved)")
	fs.BoolVar(&opts.noStore, "no-store", false, "Ignore the settings store and start from defaults")
	fs.BoolVar(&opts.verbose, "v", false, "Log lookups to stderr")
	fs.BoolVar(&opts.version, "version", false, "Show version and exit")
	thumbnail := fs.Bool("thumbnail", true, "Show thumbnails for this run")
	channelIcon := fs.Bool("channel-icon", true, "Show channel icons for this run")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "thumbnail":
			opts.thumbnail = thumbnail
		case "channel-icon":
			opts.channelIcon = channelIcon
		}
	})

	if opts.document && opts.mode == string(domain.ModeTextual) {
		return nil, fmt.Errorf("-document with -mode textual: %w", domain.ErrDocumentMode)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.input = fs.Arg(0)
	default:
		return nil, errors.New("at most one input file may be given")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if opts.version {
		fmt.Printf("vidcard %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout, os.Stderr, promptKey); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout, stderr io.Writer, readKey func() (string, error)) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	mode, err := domain.ParseEnrichMode(opts.mode)
	if err != nil {
		return fmt.Errorf("-mode %q: %w", opts.mode, err)
	}

	cfg, err := config.LoadClient(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Storage.DatabasePath = opts.dbPath
	}

	settings, err := loadSettings(ctx, cfg, opts.noStore, logger)
	if err != nil {
		return err
	}
	if opts.thumbnail != nil {
		settings.ShowThumbnail = *opts.thumbnail
	}
	if opts.channelIcon != nil {
		settings.ShowChannelIcon = *opts.channelIcon
	}
	if opts.promptKey {
		key, err := readKey()
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}
		settings.APIKey = key
	}
	if settings.ChannelIconsEnabled() && !settings.HasAPIKey() {
		logger.Warn("channel icons are on but no API key is set; cards will have no channel icon")
	}

	content, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}

	icons := service.NewChannelIconResolver(youtube.NewDataClient(cfg.YouTube), nil, logger)
	resolver := service.NewMetadataResolver(youtube.NewOEmbedClient(cfg.YouTube), icons, nil, logger)
	enricher := service.NewEnrichService(resolver, nil, repository.NewInMemoryJobRepository(), nil, logger)

	var (
		out    string
		report domain.EnrichReport
	)
	if opts.document {
		out, report, err = enricher.EnrichDocument(ctx, content, settings)
		if err != nil {
			return fmt.Errorf("enrich document: %w", err)
		}
	} else {
		out, report = enricher.EnrichHTML(ctx, content, settings, mode)
	}

	if err := writeOutput(opts.output, stdout, out); err != nil {
		return err
	}

	logger.Info("pass complete",
		"candidates", report.Candidates,
		"recognized", report.Recognized,
		"replaced", report.Replaced,
		"unresolved", report.Unresolved,
	)
	return nil
}

// loadSettings reads the persisted settings unless noStore is set.
func loadSettings(ctx context.Context, cfg *config.Config, noStore bool, logger *slog.Logger) (domain.Settings, error) {
	if noStore {
		return domain.DefaultSettings(), nil
	}

	var sealer *crypto.Sealer
	if cfg.Storage.Secret != "" {
		var err error
		if sealer, err = crypto.NewSealer(cfg.Storage.Secret); err != nil {
			return domain.Settings{}, fmt.Errorf("init key encryption: %w", err)
		}
	}

	repo, err := repository.NewSQLiteSettingsRepository(ctx, cfg.Storage.DatabasePath, sealer)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("open settings store (use -no-store to skip): %w", err)
	}
	defer repo.Close()

	return service.NewSettingsService(repo, logger).Load(ctx)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func writeOutput(path string, stdout io.Writer, out string) error {
	if path == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// promptKey reads a key without echo. Stdin may carry the input document,
// so the prompt uses the controlling terminal when stdin is not one.
func promptKey() (string, error) {
	fmt.Fprint(os.Stderr, "YouTube API key: ")

	in := os.Stdin
	if !term.IsTerminal(int(in.Fd())) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return "", errors.New("no terminal available for the key prompt")
		}
		defer tty.Close()
		in = tty
	}

	if term.IsTerminal(int(in.Fd())) {
		key, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(key)), nil
	}

	// Fallback for non-terminal input
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
