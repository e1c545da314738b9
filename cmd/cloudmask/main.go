package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"cloudmask/internal/equations"
	"cloudmask/internal/logger"
	"cloudmask/internal/models"
	"cloudmask/internal/pipeline"
	"cloudmask/internal/processing/filters"
	"cloudmask/internal/raster"
	"cloudmask/internal/shutdown"
)

const (
	AppName    = "cloudmask"
	AppVersion = "1.0.0"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type options struct {
	minFilter int
	maxFilter int
	dstDType  string
	output    string
	co        stringList
	config    string
	logLevel  string
	logFormat string
	version   bool

	bands []string
	set   map[string]bool
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.IntVar(&o.minFilter, "min-filter", models.DefaultMinFilter, "minimum filter size in pixels, 0 disables it")
	fs.IntVar(&o.maxFilter, "max-filter", models.DefaultMaxFilter, "maximum filter size in pixels, 0 disables it")
	fs.StringVar(&o.dstDType, "dst-dtype", string(raster.Uint8), "output data type (uint8 or uint16)")
	fs.StringVar(&o.output, "output", "", "output mask path (required)")
	fs.StringVar(&o.output, "o", "", "shorthand for --output")
	fs.Var(&o.co, "co", "GDAL creation option KEY=VALUE, may be repeated")
	fs.StringVar(&o.config, "config", "", "YAML tuning file applied before command line flags")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", string(logger.FormatConsole), "log format (console or json)")
	fs.BoolVar(&o.version, "version", false, "print the version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] %s -o OUT.tif\n\nFlags:\n",
			AppName, strings.ToUpper(strings.Join(equations.BandNames, " ")))
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs accepts flags before, between and after the band paths.
// Everything after "--" is positional.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := newFlagSet(o, stderr)

	rest := args
	for len(rest) > 0 {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		remaining := fs.Args()
		consumed := len(rest) - len(remaining)
		if consumed > 0 && rest[consumed-1] == "--" {
			o.bands = append(o.bands, remaining...)
			break
		}
		if len(remaining) == 0 {
			break
		}
		o.bands = append(o.bands, remaining[0])
		rest = remaining[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})
	if o.version {
		return o, nil
	}

	if len(o.bands) != len(equations.BandNames) {
		fs.Usage()
		return nil, fmt.Errorf("expected %d band paths, got %d", len(equations.BandNames), len(o.bands))
	}
	if o.output == "" {
		fs.Usage()
		return nil, errors.New("an output path is required (-o OUT.tif)")
	}
	return o, nil
}

// buildConfiguration layers the tuning file and then the explicit flags
// over the defaults.
func buildConfiguration(o *options) (*models.ProcessingConfiguration, error) {
	cfg := models.NewProcessingConfiguration()
	if o.config != "" {
		if err := cfg.LoadFile(o.config); err != nil {
			return nil, err
		}
	}

	p := cfg.Parameters()
	if o.set["min-filter"] {
		p.MinFilter = filters.Square(o.minFilter)
	}
	if o.set["max-filter"] {
		p.MaxFilter = filters.Square(o.maxFilter)
	}
	if o.set["dst-dtype"] {
		p.DstDType = o.dstDType
	}
	if len(o.co) > 0 {
		p.CreationOptions = append(p.CreationOptions, o.co...)
	}
	if err := cfg.Update(p); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configureRuntime trades memory for fewer collections while whole scenes
// are held in memory, unless GOGC is set.
func configureRuntime() {
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(200)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return exitUsage
	}
	if o.version {
		fmt.Fprintf(stderr, "%s %s\n", AppName, AppVersion)
		return exitOK
	}

	log, err := logger.New(logger.Config{
		Level:  o.logLevel,
		Format: logger.Format(o.logFormat),
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return exitUsage
	}

	cfg, err := buildConfiguration(o)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		if errors.Is(err, models.ErrInvalidParameter) {
			return exitUsage
		}
		return exitError
	}
	paths, err := models.BandPathsFromArgs(o.bands)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return exitUsage
	}

	configureRuntime()
	params := cfg.Parameters()
	log.Debug("Main", "starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"min_filter": params.MinFilter.String(),
		"max_filter": params.MaxFilter.String(),
		"dst_dtype":  params.DstDType,
	})

	mgr := shutdown.NewManager(ctx, log)
	mgr.Listen()
	defer mgr.Shutdown()

	gdal := raster.GDAL{}
	coord := pipeline.NewCoordinator(pipeline.Config{
		Reader:     gdal,
		Writer:     gdal,
		Logger:     log,
		Parameters: cfg,
	})

	if _, err := coord.Run(mgr.Context(), paths, o.output); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", AppName, err)
		return exitError
	}

	for _, s := range coord.Timings() {
		log.Debug("Main", "stage timing", map[string]interface{}{
			"stage":   s.Operation,
			"seconds": s.Total.Seconds(),
		})
	}
	return exitOK
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}
