package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/villabook/internal/client/locale"
)

func newLocaleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locale [code]",
		Short: "Show or set the preferred language",
		Example: `  villabook locale
  villabook locale fr`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runE(func(ctx context.Context, c *Cli, args []string) error {
			if len(args) == 0 {
				c.io.Printf("Locale: %s\n", c.lang)
				c.io.Printf("Login page: %s\n", locale.LoginPath(c.lang))
				return nil
			}
			return c.runSetLocale(ctx, args[0])
		}),
	}
}

func (c *Cli) runSetLocale(ctx context.Context, code string) error {
	tag := c.resolver.Normalize(code)
	if tag == "" {
		return fmt.Errorf("unsupported locale %q (supported: %s)", code, supportedLocales())
	}

	if err := c.prefs.SetPreference(ctx, locale.PreferenceKey, tag); err != nil {
		return fmt.Errorf("failed to save locale: %w", err)
	}
	c.lang = tag

	c.io.Printf("✓ Locale set to %s\n", tag)
	return nil
}

func supportedLocales() string {
	codes := make([]string, 0, len(locale.Supported))
	for _, t := range locale.Supported {
		codes = append(codes, t.String())
	}
	return strings.Join(codes, ", ")
}
