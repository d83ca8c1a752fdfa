package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/konstantinfoerster/collection-diff-go/internal/collection"
	"github.com/konstantinfoerster/collection-diff-go/internal/config"
	"github.com/konstantinfoerster/collection-diff-go/internal/locate"
	logger "github.com/konstantinfoerster/collection-diff-go/internal/log"
	"github.com/konstantinfoerster/collection-diff-go/internal/reconcile"
	"github.com/konstantinfoerster/collection-diff-go/internal/storage"
	"github.com/rs/zerolog/log"
)

const defaultConfigPath = "./configs/application.yaml"

const usage = `Usage: collection-diff [options...] [new export]
  -c, --config path to the configuration file (default: ./configs/application.yaml)
  -n, --new newest collection export, has precedence over the first argument
  -o, --old collection export to compare against (default: most recent other export)
  -d, --dir collection directory, used if no new export is given (default: storage location)
  -r, --rename rename both exports to the modification timestamp
  -f, --format report format plain or table (default: plain)
      --ignore-foil do not distinguish foil and non-foil cards
  -h, --help prints help information
`

type flags struct {
	configPath string
	newFile    string
	oldFile    string
	dir        string
	format     string
	rename     bool
	ignoreFoil bool
	configSet  bool
}

func parseFlags(args []string, output io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("collection-diff", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { _, _ = fmt.Fprint(output, usage) }

	fs.StringVar(&f.configPath, "c", defaultConfigPath, "path to the configuration file")
	fs.StringVar(&f.configPath, "config", defaultConfigPath, "path to the configuration file")
	fs.StringVar(&f.newFile, "n", "", "newest collection export")
	fs.StringVar(&f.newFile, "new", "", "newest collection export")
	fs.StringVar(&f.oldFile, "o", "", "collection export to compare against")
	fs.StringVar(&f.oldFile, "old", "", "collection export to compare against")
	fs.StringVar(&f.dir, "d", "", "collection directory")
	fs.StringVar(&f.dir, "dir", "", "collection directory")
	fs.StringVar(&f.format, "f", "", "report format plain or table")
	fs.StringVar(&f.format, "format", "", "report format plain or table")
	fs.BoolVar(&f.rename, "r", false, "rename both exports to the modification timestamp")
	fs.BoolVar(&f.rename, "rename", false, "rename both exports to the modification timestamp")
	fs.BoolVar(&f.ignoreFoil, "ignore-foil", false, "do not distinguish foil and non-foil cards")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "c" || fl.Name == "config" {
			f.configSet = true
		}
	})

	if f.newFile == "" && fs.NArg() > 0 {
		f.newFile = fs.Arg(0)
	}

	return f, nil
}

func loadConfig(f *flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configSet {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.LoadOrDefault(f.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s %w", f.configPath, err)
	}

	if f.format != "" {
		cfg.Report.Format = f.format
	}
	if f.ignoreFoil {
		cfg.Collection.IgnoreFoil = true
	}

	return cfg, nil
}

// buildRequest resolves the collection directory and the export names relative to it.
// The directory of the new export wins over the dir flag and the configured storage location.
func buildRequest(f *flags, cfg *config.Config) (string, locate.Request, error) {
	dir := cfg.Storage.LocationOrDefault()
	if f.dir != "" {
		dir = f.dir
	}

	var req locate.Request
	if f.newFile != "" {
		newPath, err := filepath.Abs(f.newFile)
		if err != nil {
			return "", req, fmt.Errorf("failed to resolve %s %w", f.newFile, err)
		}
		dir = filepath.Dir(newPath)
		req.NewFile = filepath.Base(newPath)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", req, fmt.Errorf("failed to resolve %s %w", dir, err)
	}

	if f.oldFile != "" {
		oldPath := f.oldFile
		if !filepath.IsAbs(oldPath) {
			oldPath = filepath.Join(dir, oldPath)
		}
		rel, err := filepath.Rel(dir, oldPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", req, fmt.Errorf("old export %s must be inside the collection directory %s", f.oldFile, dir)
		}
		req.OldFile = rel
	}

	return dir, req, nil
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	if err := logger.SetLogLevel(cfg.Logging.LevelOrDefault()); err != nil {
		return err
	}

	format, err := collection.ParseReportFormat(cfg.Report.FormatOrDefault())
	if err != nil {
		return err
	}

	dir, req, err := buildRequest(f, cfg)
	if err != nil {
		return err
	}

	log.Debug().Msgf("OS\t\t %s", runtime.GOOS)
	log.Debug().Msgf("ARCH\t\t %s", runtime.GOARCH)
	log.Info().Msgf("Using collection directory %s", dir)

	store, err := storage.NewLocalStorage(config.Storage{Location: dir, Mode: cfg.Storage.ModeOrDefault()})
	if err != nil {
		return err
	}

	opts := reconcile.Options{
		Request:    req,
		Rename:     f.rename,
		FilePrefix: cfg.Collection.FilePrefixOrDefault(),
		IgnoreFoil: cfg.Collection.IgnoreFoil,
		LockPath:   filepath.Join(dir, cfg.Collection.LockFileOrDefault()),
		Format:     format,
	}
	summary, err := reconcile.NewReconciler(store, opts).Run(stdout)
	if err != nil {
		return err
	}

	log.Debug().Msgf("Summary %#v", summary)

	return nil
}

func main() {
	logger.SetupConsoleLogger()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("collection diff failed")
		os.Exit(1)
	}
}
