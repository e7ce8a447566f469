package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/villabook/pkg/api"
)

func newRegisterCommand(a *app) *cobra.Command {
	var (
		name, email string
		pw          PasswordSource
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Example: `  villabook register --name "Alice" --email alice@example.com
  VILLABOOK_PASSWORD=secret123 villabook register --name Alice --email alice@example.com`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runRegister(ctx, name, email, pw)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&pw.FromFile, "password-file", "", "Read password from file")

	return cmd
}

func (c *Cli) runRegister(ctx context.Context, name, email string, pw PasswordSource) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	name, err := c.promptIfEmpty(name, "Name: ")
	if err != nil {
		return err
	}
	email, err = c.promptIfEmpty(email, "Email: ")
	if err != nil {
		return err
	}

	password, err := c.readPassword(pw, "Password: ")
	if err != nil {
		return err
	}
	// подтверждение только при интерактивном вводе
	if pw.FromFile == "" && !passwordFromEnv() {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	user, err := c.authService.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.printUser(user)
	return nil
}

func newLoginCommand(a *app) *cobra.Command {
	var (
		email string
		pw    PasswordSource
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runLogin(ctx, email, pw)
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&pw.FromFile, "password-file", "", "Read password from file")

	return cmd
}

func (c *Cli) runLogin(ctx context.Context, email string, pw PasswordSource) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.promptIfEmpty(email, "Email: ")
	if err != nil {
		return err
	}
	password, err := c.readPassword(pw, "Password: ")
	if err != nil {
		return err
	}

	user, err := c.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.printUser(user)
	c.io.Println()
	c.io.Println("Your session has been saved.")
	return nil
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the local session",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runLogout(ctx)
		}),
	}
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Logged out")
	return nil
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runStatus(ctx)
		}),
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	st, err := c.authService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !st.Authenticated {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'villabook login' to authenticate.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	if st.User != nil {
		c.printUser(st.User)
	}
	c.io.Printf("Locale: %s\n", c.lang)
	return nil
}

func newMeCommand(a *app) *cobra.Command {
	var upd pkgapi.UpdateProfileRequest

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show or update your profile",
		Example: `  villabook me
  villabook me --name "Alice B" --phone "+33 6 12 34 56 78"`,
		Args: cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runMe(ctx, upd)
		}),
	}

	cmd.Flags().StringVar(&upd.Name, "name", "", "New display name")
	cmd.Flags().StringVar(&upd.Phone, "phone", "", "New phone number")

	return cmd
}

func (c *Cli) runMe(ctx context.Context, upd pkgapi.UpdateProfileRequest) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	var (
		user *pkgapi.User
		err  error
	)
	if upd.Name != "" || upd.Phone != "" {
		user, err = c.apiClient.UpdateProfile(ctx, upd)
		if err == nil {
			c.io.Println("✓ Profile updated")
		}
	} else {
		user, err = c.apiClient.Me(ctx)
	}
	if err != nil {
		return err
	}

	c.printUser(user)
	return nil
}

func (c *Cli) printUser(u *pkgapi.User) {
	if u == nil {
		return
	}
	c.io.Printf("Name:  %s\n", u.Name)
	c.io.Printf("Email: %s\n", u.Email)
	if u.Phone != "" {
		c.io.Printf("Phone: %s\n", u.Phone)
	}
}
