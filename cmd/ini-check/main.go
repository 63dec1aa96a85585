// Command ini-check loads one or more INI files as layers, configures every
// extension they declare and reports the values that could not be used.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"extframe/internal/feature"
	"extframe/internal/feature/host"
	"extframe/internal/observability"
	"extframe/pkg/ini"
)

var exitFunc = os.Exit

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ini-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var files fileList
	fs.Var(&files, "ini", "INI file to load; repeat to layer files, later files override earlier ones")
	codepage := fs.String("codepage", "windows-1252", "code page the INI files are written in")
	assetDir := fs.String("assets", "", "directory holding palettes and other assets")
	verbose := fs.Bool("v", false, "log every diagnostic as it is found")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintln(stderr, "ini-check: at least one -ini file is required")
		return 2
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rep, err := run(files, *codepage, *assetDir, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "ini-check: %v\n", err)
		return 1
	}
	for _, d := range rep.diagnostics {
		_, _ = fmt.Fprintf(stdout, "[%s] %s: %s=%q: %s\n", d.Section, d.Severity, d.Key, d.Value, d.Reason)
	}
	_, _ = fmt.Fprintf(stdout, "%d animation(s), %d super weapon(s), %d parse failure(s), %d missing resource(s)\n",
		rep.summary.Animations, rep.summary.SuperWeapons,
		rep.counts.Diagnostics[string(ini.SeverityParse)], rep.counts.Diagnostics[string(ini.SeverityResource)])
	if len(rep.diagnostics) > 0 {
		return 1
	}
	return 0
}

type report struct {
	summary     feature.Summary
	diagnostics []ini.Diagnostic
	counts      observability.ExpvarSnapshot
}

func run(files []string, codepage, assetDir string, logger *slog.Logger) (report, error) {
	layers := make(ini.Layered, 0, len(files))
	for _, path := range files {
		f, err := ini.LoadFile(path, codepage)
		if err != nil {
			return report{}, err
		}
		layers = append(layers, f)
	}

	var assets host.AssetFS
	if assetDir != "" {
		info, err := os.Stat(assetDir)
		if err != nil {
			return report{}, err
		}
		if !info.IsDir() {
			return report{}, errors.New("assets is not a directory: " + assetDir)
		}
		assets.FS = os.DirFS(assetDir)
	}

	counts := observability.NewExpvarRecorder("")
	p := ini.NewParser(layers, ini.WithLogger(logger), ini.WithMetricsRecorder(counts))
	set := feature.NewSet(assets, logger)
	sum := set.Configure(layers, p)
	return report{summary: sum, diagnostics: p.Diagnostics(), counts: counts.Snapshot()}, nil
}
