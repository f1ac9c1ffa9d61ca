// Command mwx works with MyWallet backup databases: it imports the
// entity graph, answers queries and aggregations over it, and writes
// modified snapshots back in the backup format.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mwxkit/mwx/internal/config"
)

var (
	// Version is set via ldflags when building.
	Version = ""

	cli struct {
		Version kong.VersionFlag `help:"Show version information"`
		Globals

		Init    InitCmd    `cmd:"" help:"Create a fresh, empty backup database."`
		Summary SummaryCmd `cmd:"" help:"Show accounts with their balances."`
		Find    FindCmd    `cmd:"" help:"List entries matching the given filters."`
		Sum     SumCmd     `cmd:"" help:"Total the movement of one account over a period."`
		Write   WriteCmd   `cmd:"" help:"Write the wallet back into a new backup file."`
	}
)

// Globals carries the flags shared by every command.
type Globals struct {
	Store   string `help:"Path to the backup database (overrides config)." type:"path" placeholder:"FILE"`
	Verbose bool   `short:"v" help:"Enable debug logging."`

	cfg config.Config
}

// storePath resolves the database path: flag first, then config.
func (g *Globals) storePath() string {
	if g.Store != "" {
		return g.Store
	}
	return g.cfg.Store.Path
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{"version": buildVersion()},
		kong.Name("mwx"),
		kong.Description("A toolkit for MyWallet backup databases."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	cfg, err := config.Load()
	ctx.FatalIfErrorf(err)
	cli.Globals.cfg = cfg
	setupLogging(cfg.Log.Level, cli.Globals.Verbose)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func setupLogging(level string, verbose bool) {
	lvl := slog.LevelInfo
	switch {
	case verbose:
		lvl = slog.LevelDebug
	case strings.EqualFold(level, "debug"):
		lvl = slog.LevelDebug
	case strings.EqualFold(level, "warn"):
		lvl = slog.LevelWarn
	case strings.EqualFold(level, "error"):
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func buildVersion() string {
	if Version == "" {
		return "dev"
	}
	return fmt.Sprintf("mwx %s", Version)
}
