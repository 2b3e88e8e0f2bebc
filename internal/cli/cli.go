// Package cli implements the bricklayer command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/bricklayer/pkg/buildinfo"
	"github.com/taigrr/bricklayer/pkg/cache"
	"github.com/taigrr/bricklayer/pkg/ledger"
	"github.com/taigrr/bricklayer/pkg/pipeline"
)

// Log levels exported for main.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by every command.
type CLI struct {
	Logger *log.Logger

	// CacheDir and LedgerPath override the per-user locations when set.
	CacheDir   string
	LedgerPath string

	configPath string
	verbose    bool
	noCache    bool
	noHistory  bool
	quiet      bool
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bricklayer",
		Short:         "Turn 3D meshes into buildable brick models",
		Long:          `bricklayer voxelizes a triangle mesh and greedily packs the solid cells with rectangular bricks, layer by layer, so every brick rests on the one below.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&c.configPath, "config", "", "TOML or YAML file with run options")
	pf.BoolVar(&c.noCache, "no-cache", false, "do not read or write the voxel cache")
	pf.BoolVar(&c.noHistory, "no-history", false, "do not record the run in the history ledger")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "hide progress bars")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.voxelizeCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.versionCommand())
	return root
}

// newRunner wires the cache, ledger and progress bar into a runner. The
// returned cleanup closes the ledger.
func (c *CLI) newRunner(w io.Writer) (*pipeline.Runner, *progressBar, func(), error) {
	var gc cache.Cache = cache.NullCache{}
	if !c.noCache {
		dir := c.CacheDir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				c.Logger.Warn("no cache directory", "err", err)
			}
		}
		if dir != "" {
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return nil, nil, nil, err
			}
			gc = fc
		}
	}

	var db *ledger.DB
	if !c.noHistory {
		db = c.openLedger()
	}

	r := pipeline.NewRunner(gc, db, c.Logger)
	var bar *progressBar
	if !c.quiet {
		bar = newProgressBar(w)
		r.Progress = bar.Report
	}
	cleanup := func() {
		if bar != nil {
			bar.Finish()
		}
		if db != nil {
			db.Close()
		}
		gc.Close()
	}
	return r, bar, cleanup, nil
}

// openLedger returns nil, after a warning, when the ledger is unavailable.
func (c *CLI) openLedger() *ledger.DB {
	path := c.LedgerPath
	if path == "" {
		var err error
		if path, err = ledger.DefaultPath(); err != nil {
			c.Logger.Warn("no history ledger", "err", err)
			return nil
		}
	}
	db, err := ledger.Open(path)
	if err != nil {
		c.Logger.Warn("no history ledger", "err", err)
		return nil
	}
	return db
}

func stdout(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

func stderr(cmd *cobra.Command) io.Writer {
	if w := cmd.ErrOrStderr(); w != nil {
		return w
	}
	return os.Stderr
}
