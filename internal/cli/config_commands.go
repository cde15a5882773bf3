package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/logging"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage filedash configuration",
		Long: `Configuration management commands for filedash.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
		// Config commands must work even when the current file is invalid
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose || debug {
				level = "debug"
			}
			if _, err := logging.Configure(logging.Options{Level: level}); err != nil {
				return err
			}
			logger = logging.NewLogger("cli")
			return nil
		},
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for filedash.

The configuration is saved to ~/.config/filedash/config.ini
(or the path given with --config).

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if path == "" {
				return fmt.Errorf("failed to determine config path")
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", path)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := runConfigWizard(bufio.NewReader(os.Stdin), os.Stdout)
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			fmt.Printf("\nConfiguration saved to: %s\n", path)
			fmt.Println("Next: run 'filedash login'.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	return cmd
}

// runConfigWizard prompts for each setting and returns a validated config.
func runConfigWizard(reader *bufio.Reader, out io.Writer) (*config.Config, error) {
	cfg := config.NewConfig()

	fmt.Fprintln(out, "filedash Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	cfg.APIBaseURL = promptLine(reader, out, "API Base URL", cfg.APIBaseURL)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Proxy (no-proxy, system, basic, ntlm)")
	cfg.ProxyMode = strings.ToLower(promptLine(reader, out, "Proxy mode", cfg.ProxyMode))
	if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
		cfg.ProxyHost = promptLine(reader, out, "Proxy host", "")
		portStr := promptLine(reader, out, "Proxy port", "8080")
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy port %q", portStr)
		}
		cfg.ProxyPort = port
		cfg.ProxyUser = promptLine(reader, out, "Proxy user (empty for none)", "")
		cfg.NoProxy = promptLine(reader, out, "Bypass hosts (comma separated)", "")
	}

	fmt.Fprintln(out)
	desktop := promptLine(reader, out, "Desktop notifications (y/n)", "n")
	cfg.DesktopNotifications = strings.HasPrefix(strings.ToLower(desktop), "y")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg.MergeWithFlags(apiBaseURL, token)
			writeConfig(os.Stdout, cfg, config.NewTokenFile(""))

			if err := cfg.Validate(); err != nil {
				fmt.Printf("\nWarning: %v\n", err)
			}
			return nil
		},
	}
}

func writeConfig(w io.Writer, cfg *config.Config, tokens *config.TokenFile) {
	fmt.Fprintln(w, "Current Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "API URL:              %s\n", cfg.APIBaseURL)
	fmt.Fprintf(w, "Request timeout:      %s\n", cfg.RequestTimeout)
	fmt.Fprintf(w, "Proxy mode:           %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(w, "Proxy:                %s:%d\n", cfg.ProxyHost, cfg.ProxyPort)
	}
	if cfg.NoProxy != "" {
		fmt.Fprintf(w, "No proxy:             %s\n", cfg.NoProxy)
	}
	fmt.Fprintf(w, "Search debounce:      %s\n", cfg.SearchDebounce)
	fmt.Fprintf(w, "Status timeout:       %s\n", cfg.StatusTimeout)
	fmt.Fprintf(w, "Desktop notify:       %t\n", cfg.DesktopNotifications)
	fmt.Fprintf(w, "Log level:            %s\n", cfg.LogLevel)

	switch {
	case cfg.Token != "":
		fmt.Fprintln(w, "Token:                from environment or flag")
	case tokens != nil:
		if _, err := tokens.Read(); err == nil {
			fmt.Fprintf(w, "Token:                saved in %s\n", tokens.Path)
		} else {
			fmt.Fprintln(w, "Token:                not signed in")
		}
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configPath())
		},
	}
}
