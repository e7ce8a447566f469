package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	pkgapi "github.com/iudanet/villabook/pkg/api"
)

func newBookingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your bookings",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runBookingsList(ctx)
		}),
	}

	var req pkgapi.CreateBookingRequest
	createCmd := &cobra.Command{
		Use:     "create",
		Short:   "Book a villa",
		Example: `  villabook bookings create --villa villa-azur --check-in 2030-07-01 --check-out 2030-07-08 --guests 4`,
		Args:    cobra.NoArgs,
		RunE: a.runE(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runBookingCreate(ctx, req)
		}),
	}
	createCmd.Flags().StringVar(&req.VillaID, "villa", "", "Villa ID")
	createCmd.Flags().StringVar(&req.CheckIn, "check-in", "", "Check-in date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&req.CheckOut, "check-out", "", "Check-out date (YYYY-MM-DD)")
	createCmd.Flags().IntVar(&req.Guests, "guests", 1, "Number of guests")
	createCmd.Flags().StringVar(&req.Notes, "notes", "", "Notes for the host")
	_ = createCmd.MarkFlagRequired("villa")
	_ = createCmd.MarkFlagRequired("check-in")
	_ = createCmd.MarkFlagRequired("check-out")

	var yes bool
	cancelCmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(ctx context.Context, c *Cli, args []string) error {
			return c.runBookingCancel(ctx, args[0], yes)
		}),
	}
	cancelCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(listCmd, createCmd, cancelCmd)
	return cmd
}

func (c *Cli) runBookingsList(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	bookings, err := c.apiClient.ListBookings(ctx)
	if err != nil {
		return err
	}

	if len(bookings) == 0 {
		c.io.Println("No bookings yet.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVILLA\tCHECK-IN\tCHECK-OUT\tGUESTS\tTOTAL\tSTATUS")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, b.VillaID, b.CheckIn, b.CheckOut, b.Guests, formatPrice(b.TotalPrice), b.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Total: %d booking(s)\n", len(bookings))
	return nil
}

func (c *Cli) runBookingCreate(ctx context.Context, req pkgapi.CreateBookingRequest) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	b, err := c.apiClient.CreateBooking(ctx, req)
	if err != nil {
		return err
	}

	c.io.Println("✓ Booking confirmed!")
	c.printBooking(b)
	return nil
}

func (c *Cli) runBookingCancel(ctx context.Context, id string, yes bool) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	if !yes {
		ok, err := c.io.Confirm(fmt.Sprintf("Cancel booking %s?", id))
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			c.io.Println("Aborted.")
			return nil
		}
	}

	b, err := c.apiClient.CancelBooking(ctx, id)
	if err != nil {
		return err
	}

	c.io.Println("✓ Booking cancelled")
	c.printBooking(b)
	return nil
}

func (c *Cli) printBooking(b *pkgapi.Booking) {
	c.io.Printf("ID:        %s\n", b.ID)
	c.io.Printf("Villa:     %s\n", b.VillaID)
	c.io.Printf("Dates:     %s → %s\n", b.CheckIn, b.CheckOut)
	c.io.Printf("Guests:    %d\n", b.Guests)
	c.io.Printf("Total:     %s\n", formatPrice(b.TotalPrice))
	c.io.Printf("Status:    %s\n", b.Status)
}
