package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/villabook/internal/client/api"
	pkgapi "github.com/iudanet/villabook/pkg/api"
)

func newVillasCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "villas",
		Short: "Browse the villa catalog",
	}

	var q api.VillaQuery
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List villas",
		Example: `  villabook villas list --location france --guests 6`,
		Args:    cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runVillasList(ctx, q)
		}),
	}
	listCmd.Flags().StringVar(&q.Location, "location", "", "Filter by location (substring)")
	listCmd.Flags().IntVar(&q.Guests, "guests", 0, "Minimum capacity")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show villa details",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(ctx context.Context, c *Cli, args []string) error {
			return c.runVillaShow(ctx, args[0])
		}),
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func (c *Cli) runVillasList(ctx context.Context, q api.VillaQuery) error {
	villas, err := c.apiClient.ListVillas(ctx, q)
	if err != nil {
		return err
	}

	if len(villas) == 0 {
		c.io.Println("No villas found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tGUESTS\tBEDROOMS\tPRICE/NIGHT")
	for _, v := range villas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			v.ID, v.Name, v.Location, v.MaxGuests, v.Bedrooms, formatPrice(v.PricePerNight))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Total: %d villa(s)\n", len(villas))
	return nil
}

func (c *Cli) runVillaShow(ctx context.Context, id string) error {
	v, err := c.apiClient.GetVilla(ctx, id)
	if err != nil {
		return err
	}
	c.printVilla(v)
	return nil
}

func (c *Cli) printVilla(v *pkgapi.Villa) {
	c.io.Printf("=== %s ===\n", v.Name)
	c.io.Printf("ID:          %s\n", v.ID)
	c.io.Printf("Location:    %s\n", v.Location)
	c.io.Printf("Guests:      up to %d\n", v.MaxGuests)
	c.io.Printf("Bedrooms:    %d\n", v.Bedrooms)
	c.io.Printf("Price/night: %s\n", formatPrice(v.PricePerNight))
	if v.Description != "" {
		c.io.Println()
		c.io.Println(v.Description)
	}
}
