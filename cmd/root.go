package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/shortcuts/internal/app"
	"github.com/zjrosen/shortcuts/internal/config"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".shortcuts/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "Launch and supervise shell command shortcuts",
	Long: `A terminal user interface for launching saved shell commands through a
single reusable launcher entry and following each run until it exits.

Run 'shortcuts daemon' to start the reference backend, then 'shortcuts'
to open the launcher.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.shortcuts/config.yaml or ~/.config/shortcuts/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also SHORTCUTS_DEBUG=1)")
	rootCmd.PersistentFlags().String("backend", "",
		"backend base URL (overrides backend.url)")

	_ = viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindEnv("backend.url", "SHORTCUTS_BACKEND_URL")
	_ = viper.BindEnv("log_path", "SHORTCUTS_LOG")
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .shortcuts/config.yaml (current directory)
		// 2. ~/.config/shortcuts/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else if dir := config.ConfigDir(); dir != "" {
			viper.AddConfigPath(dir)
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: decoding config: %v\n", err)
	}
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
}

// configPath returns the file config edits are written to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if dir := config.ConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return localConfigPath
}

// initLogging enables the debug log when requested by flag, env or config.
// The returned cleanup is never nil.
func initLogging(prefix string, tui bool) (func(), error) {
	if !debugFlag && os.Getenv("SHORTCUTS_DEBUG") == "" && !cfg.Debug {
		return func() {}, nil
	}
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = "debug.log"
	}

	var (
		cleanup func()
		err     error
	)
	if tui {
		cleanup, err = log.InitWithTeaLog(logPath, prefix)
	} else {
		cleanup, err = log.Init(logPath)
	}
	if err != nil {
		return func() {}, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "starting", "component", prefix, "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

func runApp(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := initLogging("shortcuts", true)
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownTracing, err := initTracing(cfg, "shortcuts")
	if err != nil {
		return err
	}
	defer shutdownTracing()

	ctx := context.Background()
	o, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer o.Dismount()

	styles.ApplyTheme(cfg.Theme.Muted, cfg.Theme.Error, cfg.Theme.Success)

	zone.NewGlobal()

	model := app.New(app.FromOrchestrator(o))
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
