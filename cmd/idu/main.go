package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"idu/internal/config"
	"idu/internal/du"
	"idu/internal/log"
	"idu/internal/repl"
	"idu/internal/session"
	"idu/internal/watch"
)

var (
	version = "dev"

	cfgFile    string
	debug      bool
	duCommand  string
	watchMode  bool
	sortBySize bool
	absolute   bool
	human      bool
)

// Entry point for the application
func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd creates the root command: the line-based interactive browser.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "idu [dir]",
		Short:   "Interactive disk usage browser",
		Long: `idu browses per-directory disk usage interactively. It runs the system
du utility one directory at a time, caches results as you navigate, and
lets you re-sort, re-root, and filter the listing from a simple prompt.
Type ? at the prompt for the command summary.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, w, err := buildSession(args, true)
			if err != nil {
				return err
			}
			if w != nil {
				defer w.Stop()
			}

			r := repl.New(s, os.Stdin, os.Stdout)
			if w != nil {
				r.SetWatcher(w)
			}
			signal.Notify(r.Signals(), os.Interrupt)
			return r.Run(context.Background())
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/idu/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&duCommand, "du", "", "disk-usage binary to invoke (default from config, usually du)")
	rootCmd.PersistentFlags().BoolVarP(&watchMode, "watch", "w", false, "re-scan directories that change on disk")
	rootCmd.PersistentFlags().BoolVarP(&sortBySize, "size", "S", false, "start sorted by size instead of name")
	rootCmd.PersistentFlags().BoolVarP(&absolute, "absolute", "a", false, "start with absolute paths")
	rootCmd.PersistentFlags().BoolVarP(&human, "human", "H", false, "start with human-readable sizes")

	rootCmd.AddCommand(NewTuiCmd())

	return rootCmd
}

// buildSession loads configuration, applies flag overrides, and assembles
// the session plus, when asked for, the change watcher.
func buildSession(args []string, withWatch bool) (*session.Session, *watch.Watcher, error) {
	log.SetDebug(debug)

	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFile(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Warnf("config: %v; using defaults", err)
		cfg = config.New()
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	duBin := cfg.Settings.DuCommand
	if duCommand != "" {
		duBin = duCommand
	}
	runner := du.NewRunner(duBin)

	s, err := session.New(dir, dir, runner.Scan)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Settings.SortBySize || sortBySize {
		s.SetSortMode(du.BySize)
	}
	if cfg.Settings.AbsolutePaths || absolute {
		s.SetDisplayMode(du.Absolute)
	}
	if cfg.Settings.HumanSizes || human {
		s.SetHumanSizes(true)
	}

	var w *watch.Watcher
	if withWatch && (cfg.Watch.Enabled || watchMode) {
		w, err = watch.New()
		if err != nil {
			log.Warnf("watch disabled: %v", err)
			w = nil
		} else if err := w.Start(); err != nil {
			log.Warnf("watch disabled: %v", err)
			w = nil
		}
	}

	return s, w, nil
}
