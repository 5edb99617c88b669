package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipedag/pkg/buildinfo"
	"github.com/matzehuels/pipedag/pkg/cache"
	"github.com/matzehuels/pipedag/pkg/config"
	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "pipedag"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// layoutKeyScope prefixes layout cache keys. Bump it when layout output
// changes shape.
const layoutKeyScope = "v1:"

// ErrInvalidPipeline is returned by validate when the graph breaks a rule.
// The violations have already been printed.
var ErrInvalidPipeline = errors.New("pipeline is invalid")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Validate and lay out pipeline graphs",
		Long: `pipedag checks node/edge pipeline graphs for structural problems
(self-loops, reversed handles, disconnected nodes, cycles) and computes
left-to-right or top-to-bottom layouts for them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $PIPEDAG_CONFIG or ~/.config/pipedag/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, applies the log level and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	path := config.Locate(c.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = LogInfo
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	lc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(lc, cache.NewScopedKeyer(nil, layoutKeyScope), c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

// newCache opens the cache backend named in the config. An unusable file
// cache directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open layout cache: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.Config.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("cannot create cache directory, caching disabled", "dir", dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Graph Input
// =============================================================================

// loadGraph reads a graph document from path, or JSON from stdin for "-".
func loadGraph(path string) (graph.Graph, error) {
	if path == "-" {
		g, err := graph.Read(os.Stdin, graph.FormatJSON)
		if err != nil {
			return graph.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "read graph from stdin: %v", err)
		}
		return g, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return graph.Graph{}, apperrors.New(apperrors.ErrCodeFileNotFound, "graph file not found: %s", path)
	}
	g, err := graph.ReadFile(path)
	if err != nil {
		return graph.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "read graph %s: %v", path, err)
	}
	return g, nil
}

// =============================================================================
// Error Reporting
// =============================================================================

// ReportError prints err for the user. Structured errors show their message
// without the code prefix.
func ReportError(w io.Writer, err error) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+apperrors.UserMessage(err))
}
