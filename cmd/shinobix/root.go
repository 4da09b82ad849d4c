package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/kerbaras/shinobix/pkg/app"
	"github.com/kerbaras/shinobix/pkg/config"
	"github.com/kerbaras/shinobix/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	v       = config.New()
	cfg     config.Config
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "shinobix",
	Short: "Browse, watch and read anime and manga from your terminal",
	Long:  "Browse AniList anime and MangaDex manga, keep favorites and pick up where you left off, in a TUI or from the CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ReadFile(v, cfgFile); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		utils.InitLogger(utils.LogOptions{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
			Debug: debug,
		})
		utils.Debug("configuration loaded", "db", cfg.DB.Path, "driver", cfg.DB.Driver, "proxies", cfg.Fetch.Proxies)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Launch TUI by default
		withRuntime(func(rt *runtime) {
			a := app.NewApp(rt.controller, app.Options{SearchDebounce: cfg.UI.SearchDebounce})
			if err := a.Run(cmd.Context()); err != nil {
				cobra.CheckErr(err)
			}
		})
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.shinobix/config.yaml)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.String("db-driver", "", "database driver: duckdb or sqlite3")
	flags.String("db-path", "", "database file")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "log file")
	flags.StringSlice("proxies", nil, "proxy order for MangaDex requests")

	cobra.CheckErr(v.BindPFlag(config.KeyDBDriver, flags.Lookup("db-driver")))
	cobra.CheckErr(v.BindPFlag(config.KeyDBPath, flags.Lookup("db-path")))
	cobra.CheckErr(v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(v.BindPFlag(config.KeyLogFile, flags.Lookup("log-file")))
	cobra.CheckErr(v.BindPFlag(config.KeyFetchProxies, flags.Lookup("proxies")))

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(favCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(qualityCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
