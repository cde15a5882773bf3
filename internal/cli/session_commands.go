package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/filedash/filedash/internal/api"
	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/core"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/session"
)

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with an access token",
		Long: `Verify an access token against the server and save it for later runs.

The token is read from --token, FILEDASH_TOKEN, or prompted for.
It is stored with mode 0600 in the filedash config directory.

Examples:
  filedash login
  echo "$TOKEN" | filedash login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}

			tok := cfg.Token
			if tok == "" {
				tok, err = promptSecret("Access token: ")
				if err != nil {
					return err
				}
			}
			if tok == "" {
				return fmt.Errorf("a token is required")
			}

			sess := session.New(config.NewTokenFile(""), GetLogger().Sub("session"))
			if err := sess.Init(tok); err != nil {
				return err
			}

			client, err := api.NewClient(cfg, sess, GetLogger().Sub("api"))
			if err != nil {
				return err
			}
			user, err := client.Me(GetContext())
			if err != nil {
				return fmt.Errorf("login failed: %s", api.ExtractMessage(err, err.Error()))
			}

			if err := sess.SignIn(tok); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", user.Username)
			return nil
		},
	}
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			if !sess.Active() {
				fmt.Println("Not signed in")
				return nil
			}

			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			return engine.Logout()
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			user, err := engine.API().Me(GetContext())
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}
			fmt.Println(user.Username)
			return nil
		},
	}
}

// newProfileCmd creates the 'profile' command.
func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show profile details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.ToggleProfileMenu(GetContext()); err != nil {
				return fmt.Errorf("failed to get profile: %w", err)
			}
			printProfile(engine.View())
			return nil
		},
	}
}

func printProfile(v core.ViewState) {
	if v.Profile == nil {
		fmt.Fprintln(os.Stderr, "Profile not loaded")
		return
	}
	fmt.Print(formatProfile(*v.Profile))
}

func formatProfile(p models.ProfileDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username:    %s\n", p.Username)
	if p.FullName != "" {
		fmt.Fprintf(&b, "Name:        %s\n", p.FullName)
	}
	if p.Email != "" {
		fmt.Fprintf(&b, "Email:       %s\n", p.Email)
	}
	if p.DateJoined.Valid() {
		fmt.Fprintf(&b, "Joined:      %s (%s)\n", p.DateJoined.Time.Format("2006-01-02"), humanize.Time(p.DateJoined.Time))
	} else if p.DateJoined.Raw != "" {
		fmt.Fprintf(&b, "Joined:      %s\n", p.DateJoined.Raw)
	}
	return b.String()
}
