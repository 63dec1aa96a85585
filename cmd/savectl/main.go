// Command savectl writes, restores, lists and deletes archived save games.
// Storage backends are selected through EXTFRAME_ environment variables;
// game state is configured from the INI files given with -ini.
//
//	savectl -ini rules.ini -slot quick -desc "before the nuke" save
//	savectl list
//	savectl -ini rules.ini -id 6f1c... load
//	savectl -id 6f1c... delete
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"extframe/internal/archive"
	"extframe/internal/blob"
	"extframe/internal/catalog"
	"extframe/internal/feature"
	"extframe/internal/feature/host"
	"extframe/internal/observability"
	"extframe/internal/platform/config"
	"extframe/pkg/diag"
	"extframe/pkg/ini"
	"extframe/pkg/savegame"
)

var exitFunc = os.Exit

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("savectl: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

type options struct {
	files    fileList
	codepage string
	assets   string
	slot     string
	desc     string
	id       string
	trace    string
	metrics  string
}

func cli(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("savectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.Var(&opts.files, "ini", "INI file describing the game; repeat to layer files")
	fs.StringVar(&opts.codepage, "codepage", cfg.Codepage, "code page the INI files are written in")
	fs.StringVar(&opts.assets, "assets", "", "directory holding palettes and other assets")
	fs.StringVar(&opts.slot, "slot", "", "save slot for save and list")
	fs.StringVar(&opts.desc, "desc", "", "description recorded with a save")
	fs.StringVar(&opts.id, "id", "", "save id for load and delete")
	fs.StringVar(&opts.trace, "trace", "none", "span output: none, json or otel")
	fs.StringVar(&opts.metrics, "metrics", "", "write Prometheus metrics to this file after the command")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "usage: savectl [flags] save|load|list|delete")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err := run(ctx, cfg, fs.Arg(0), opts, stdout, stderr, logger); err != nil {
		_, _ = fmt.Fprintf(stderr, "savectl: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func run(ctx context.Context, cfg config.Config, command string, opts options, stdout, stderr io.Writer, logger *slog.Logger) (err error) {
	metrics, err := observability.NewPrometheusRecorder(cfg.Namespace)
	if err != nil {
		return err
	}
	tracer, shutdown, err := newTracer(opts.trace, stderr, logger)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, shutdown(context.WithoutCancel(ctx))) }()
	if opts.metrics != "" {
		defer func() { err = errors.Join(err, writeMetrics(opts.metrics, metrics)) }()
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return err
	}
	cat, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, cat.Close()) }()

	manager := savegame.NewManager(
		savegame.WithLogger(logger),
		savegame.WithMetricsRecorder(metrics),
		savegame.WithTracer(tracer),
	)
	arc := archive.New(blobs, cat, manager, archive.WithLogger(logger))

	switch command {
	case "save":
		if opts.slot == "" {
			return fmt.Errorf("%w: save needs -slot", errUsage)
		}
		if _, err := configure(opts, manager, metrics, logger); err != nil {
			return err
		}
		entry, err := arc.Save(ctx, opts.slot, opts.desc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "saved %s slot=%s bytes=%d\n", entry.ID, entry.Slot, entry.Size)
		return err
	case "load":
		id, err := parseID(opts.id)
		if err != nil {
			return err
		}
		set, err := configure(opts, manager, metrics, logger)
		if err != nil {
			return err
		}
		entry, err := arc.Load(ctx, id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "loaded %s slot=%s animations=%d super_weapons=%d\n",
			entry.ID, entry.Slot, set.Animations.Len(), set.SuperWeapons.Len())
		return err
	case "list":
		entries, err := arc.List(ctx, opts.slot)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tSLOT\tBYTES\tCREATED\tDESCRIPTION")
		for _, e := range entries {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.ID, e.Slot, e.Size, e.CreatedAt.Format(time.RFC3339), e.Description)
		}
		return tw.Flush()
	case "delete":
		id, err := parseID(opts.id)
		if err != nil {
			return err
		}
		if err := arc.Delete(ctx, id); err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "deleted %s\n", id)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func parseID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: -id is required", errUsage)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad -id: %v", errUsage, err)
	}
	return id, nil
}

// configure builds the extension set from the INI layers and registers it
// with manager.
func configure(opts options, manager *savegame.Manager, metrics diag.MetricsRecorder, logger *slog.Logger) (*feature.Set, error) {
	if len(opts.files) == 0 {
		return nil, fmt.Errorf("%w: at least one -ini file is required", errUsage)
	}
	layers := make(ini.Layered, 0, len(opts.files))
	for _, path := range opts.files {
		f, err := ini.LoadFile(path, opts.codepage)
		if err != nil {
			return nil, err
		}
		layers = append(layers, f)
	}
	var assets host.AssetFS
	if opts.assets != "" {
		assets.FS = os.DirFS(opts.assets)
	}
	set := feature.NewSet(assets, logger)
	p := ini.NewParser(layers, ini.WithLogger(logger), ini.WithMetricsRecorder(metrics))
	set.Configure(layers, p)
	if err := set.Register(manager); err != nil {
		return nil, err
	}
	return set, nil
}

func newTracer(kind string, stderr io.Writer, logger *slog.Logger) (diag.Tracer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch kind {
	case "", "none":
		return diag.NopTracer{}, noop, nil
	case "json":
		return observability.NewJSONTracer(stderr), noop, nil
	case "otel":
		provider := observability.NewLoggingProvider(logger)
		return observability.NewOTelTracer(provider), provider.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown -trace %q", errUsage, kind)
	}
}

func writeMetrics(path string, rec *observability.PrometheusRecorder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rec.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
