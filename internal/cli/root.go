// Package cli provides the command-line interface for filedash.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/core"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/notify"
	"github.com/filedash/filedash/internal/session"
	"github.com/filedash/filedash/internal/version"
)

var (
	// Global flags
	cfgFile    string
	apiBaseURL string
	token      string
	logFile    string
	verbose    bool
	debug      bool

	// Global logger
	logger *logging.Logger

	// Configuration resolved in PersistentPreRunE
	appConfig *config.Config
	closeLogs func() error

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filedash",
		Short: "filedash - browse, search, and manage your stored files",
		Long: `filedash ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line dashboard for a personal file-storage service.

Sign in once with 'filedash login', then list, search, upload, preview,
download, and delete files. 'filedash shell' opens an interactive
dashboard session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			appConfig = cfg

			level := cfg.LogLevel
			if verbose || debug {
				level = "debug"
			}
			file := cfg.LogFile
			if logFile != "" {
				file = logFile
			}
			closeLogs, err = logging.Configure(logging.Options{Level: level, File: file})
			if err != nil {
				return fmt.Errorf("failed to configure logging: %w", err)
			}
			logger = logging.NewLogger("cli")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLogs != nil {
				_ = closeLogs()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for this run only (not saved)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newProfileCmd())

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newExtensionsCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newDeleteCmd())

	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger("cli")
	}
	return logger
}

// GetContext returns the global CLI context, cancelled on Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig reads the config file, then environment, then flags.
// Priority: flags > environment > config file > defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.MergeWithFlags(apiBaseURL, token)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return loadConfig()
}

// openSession initializes the credential from --token/FILEDASH_TOKEN or the
// token file.
func openSession() (*session.Session, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	sess := session.New(config.NewTokenFile(""), GetLogger().Sub("session"))
	if err := sess.Init(cfg.Token); err != nil {
		return nil, err
	}
	return sess, nil
}

// openEngine builds a dashboard engine for one command. Status messages are
// printed to stderr. The caller must Close the engine.
func openEngine(deps core.Dependencies) (*core.Engine, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}
	sess, err := openSession()
	if err != nil {
		return nil, err
	}
	if !sess.Active() {
		return nil, fmt.Errorf("%w: run 'filedash login' first", session.ErrNotSignedIn)
	}

	if deps.Logger == nil {
		deps.Logger = GetLogger().Sub("engine")
	}
	if deps.Navigator == nil {
		deps.Navigator = printNavigator{out: os.Stderr}
	}
	deps.Sinks = append([]notify.Sink{statusPrinter{out: os.Stderr}}, deps.Sinks...)

	return core.NewEngine(cfg, sess, deps)
}
