// Package cli implements the soundmetrics command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ewilliams-labs/soundmetrics/internal/config"
	"github.com/ewilliams-labs/soundmetrics/internal/core/ports"
	"github.com/ewilliams-labs/soundmetrics/internal/core/services"
	"github.com/ewilliams-labs/soundmetrics/internal/logging"
)

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"database":   "database",
	"log-level":  "log.level",
	"log-format": "log.format",
}

type app struct {
	v       *viper.Viper
	cfgFile string
	jsonOut bool
	out     io.Writer
	errOut  io.Writer

	cfg    config.Config
	logger *slog.Logger

	// newCatalog builds the catalog client; tests swap in a fake.
	newCatalog  func(cfg config.Config, logger *slog.Logger) (ports.CatalogProvider, error)
	serviceOpts []services.Option
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:          viper.New(),
		out:        out,
		errOut:     errOut,
		newCatalog: newSpotifyCatalog,
	}
}

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the full command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	return newApp(out, errOut).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soundmetrics",
		Short: "Measures genres and artists in the Spotify catalog",
		Long: `Samples playlists and top tracks from the Spotify Web API, aggregates
popularity and audio descriptors, compares entities and records snapshots
in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.soundmetrics.yaml)")
	flags.StringP("database", "d", "./soundmetrics.db", "Path to the SQLite database")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "auto", "log format: auto, text or json")
	flags.BoolVar(&a.jsonOut, "json", false, "print the JSON envelope instead of tables")

	cmd.AddCommand(a.serveCmd(), a.healthCmd(), a.genresCmd(), a.artistsCmd())
	return cmd
}

// initConfig reads .env, the config file and the environment, then builds
// the logger.
func (a *app) initConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	config.SetDefaults(a.v)
	if err := config.BindEnv(a.v); err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	if a.cfgFile != "" {
		// Use config file from the flag.
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}
		// Search config in home directory with name ".soundmetrics" (without extension).
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".soundmetrics")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: a.errOut})
	if err != nil {
		return err
	}
	a.logger = logger
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return nil
}
