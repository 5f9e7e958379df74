package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"github.com/zerovacancy/zerovacancy/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store a session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var (
	loginEmail string
	loginName  string
	loginRole  string
	loginID    string
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginName, "name", "", "display name")
	loginCmd.Flags().StringVar(&loginRole, "role", string(core.RolePropertyManager), "creator or property_manager")
	loginCmd.Flags().StringVar(&loginID, "id", "", "user ID (generated when empty)")
	loginCmd.MarkFlagRequired("email")
}

// withSessions opens the session provider only; no backend is needed.
func withSessions(fn func(ctx context.Context, p *session.Provider) error) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx := context.Background()
	provider, closer, err := rt.openSessions(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	return fn(ctx, provider)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withSessions(func(ctx context.Context, p *session.Provider) error {
		s, err := p.SignIn(ctx, core.User{
			ID:    loginID,
			Email: loginEmail,
			Name:  loginName,
			Role:  core.Role(loginRole),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Signed in as %s (%s)\n", s.User.Email, s.User.Role)
		fmt.Printf("Session expires %s\n", s.ExpiresAt.Format("2006-01-02 15:04 MST"))
		fmt.Printf("Home: %s\n", session.HomePath(s.User.Role))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withSessions(func(ctx context.Context, p *session.Provider) error {
		if err := p.SignOut(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	})
}

func runWhoami(cmd *cobra.Command, args []string) error {
	return withSessions(func(ctx context.Context, p *session.Provider) error {
		s, err := p.Current(ctx)
		if err != nil {
			if core.IsKind(err, core.KindNotFound) {
				fmt.Println("Not signed in.")
				return nil
			}
			return err
		}

		fmt.Printf("ID:      %s\n", s.User.ID)
		fmt.Printf("Email:   %s\n", s.User.Email)
		if s.User.Name != "" {
			fmt.Printf("Name:    %s\n", s.User.Name)
		}
		fmt.Printf("Role:    %s\n", s.User.Role)
		fmt.Printf("Expires: %s\n", s.ExpiresAt.Format("2006-01-02 15:04 MST"))
		return nil
	})
}
