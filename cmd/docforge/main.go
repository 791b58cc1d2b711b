// Command docforge compiles a record file into a .docx without a server.
//
//	docforge --record rec.yaml [--content body.md] [--out file.docx] [--host-org X]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgallion1/docforge/internal/assets"
	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/parser"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"gopkg.in/yaml.v3"
)

type options struct {
	record      string
	content     string
	out         string
	hostOrg     string
	assetDir    string
	category    string
	required    []string
	concurrency int
	verbose     bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("docforge", flag.ContinueOnError)
	fs.StringVarP(&opts.record, "record", "r", "", "record file (YAML or JSON)")
	fs.StringVarP(&opts.content, "content", "c", "", "body file to import (.md .html .txt .csv .pdf .docx)")
	fs.StringVarP(&opts.out, "out", "o", "", "output path (default: derived from title and organization)")
	fs.StringVar(&opts.hostOrg, "host-org", "", "organization whose approvers are listed first")
	fs.StringVar(&opts.assetDir, "asset-dir", "", "directory file:// assets may be read from (default: the record's directory)")
	fs.StringVar(&opts.category, "default-category", "Approvers", "category for approvers without one")
	fs.StringSliceVar(&opts.required, "required-category", nil, "category that always gets a signature row (repeatable)")
	fs.IntVar(&opts.concurrency, "concurrency", assets.DefaultConcurrency, "parallel asset fetches")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")

	if err := fs.Parse(args[1:]); err != nil {
		return opts, err
	}
	if opts.record == "" {
		return opts, errors.New("--record is required")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Error ignored: an invalid GOMAXPROCS env leaves the runtime default.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := run(ctx, opts, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(path)
}

// run compiles the record and returns the path written.
func run(ctx context.Context, opts options, log *slog.Logger) (string, error) {
	rec, err := readRecord(opts.record)
	if err != nil {
		return "", err
	}

	if opts.content != "" {
		doc, err := importContent(opts.content)
		if err != nil {
			return "", err
		}
		rec.Content = doc.Content
		if rec.Title == "" {
			rec.Title = doc.Title
		}
	}

	assetDir := opts.assetDir
	if assetDir == "" {
		assetDir = filepath.Dir(opts.record)
	}

	resolver := assets.NewResolver(assets.Options{BaseDir: assetDir}, log)
	comp := compiler.New(resolver, compiler.Options{
		Concurrency:        opts.concurrency,
		HostOrganization:   opts.hostOrg,
		DefaultCategory:    opts.category,
		RequiredCategories: opts.required,
		LogoDir:            assetDir,
	}, log)

	out, err := comp.Render(ctx, rec)
	if err != nil {
		return "", err
	}

	dest := opts.out
	if dest == "" {
		dest = out.FileName
	}
	if err := os.WriteFile(dest, out.Data, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	log.Info("wrote document", "path", dest, "bytes", len(out.Data))
	return dest, nil
}

// readRecord loads a YAML or JSON record. The file is decoded generically
// and re-encoded as JSON so the record's json tags and the content
// tree's wire format apply to both.
func readRecord(path string) (*compiler.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("record %s is empty", path)
	}

	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert record %s: %w", path, err)
	}
	var rec compiler.Record
	if err := json.Unmarshal(js, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return &rec, nil
}

func importContent(path string) (*parser.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = true
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
