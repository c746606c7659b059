package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	applifting "github.com/applifting/applifting-sdk-go"
	"github.com/applifting/applifting-sdk-go/apierror"
	"github.com/applifting/applifting-sdk-go/tui"
)

func newDemoCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Register a product and show its offers",
		Long: `Register a product with a random id, then fetch and show its offers.
Pass --id to look at a product registered earlier.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := getCliContext(cmd)
			if err != nil {
				return err
			}

			productID := uuid.New()
			if id != "" {
				if productID, err = uuid.Parse(id); err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !isTTY() {
				d := tui.NewPlainDisplayer(cmd.ErrOrStderr())
				d.Banner()
				return runDemo(ctx, cliCtx.Client, productID, d)
			}

			// Run TUI program on stderr so stdout pipes are not corrupted.
			// WithInput(nil) skips terminal capability queries; Ctrl+C arrives
			// through signal.NotifyContext instead.
			p := tea.NewProgram(tui.NewModel(), tea.WithOutput(os.Stderr), tea.WithInput(nil))

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := p.Run(); err != nil {
					cliCtx.Logger.Error().Err(err).Msg("TUI error")
				}
			}()

			d := tui.NewProgramDisplayer(p)
			d.Banner()
			runErr := runDemo(ctx, cliCtx.Client, productID, d)
			p.Quit() // let BubbleTea drain terminal query responses before exiting
			wg.Wait()
			return runErr
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Product id (default: a new random UUID)")

	return cmd
}

// runDemo registers productID and shows its offers through d. A product that
// is already registered is not an error.
func runDemo(ctx context.Context, client *applifting.Client, productID uuid.UUID, d tui.Displayer) error {
	d.ObtainingToken()
	token, err := client.Tokens().ValidToken(ctx)
	if err != nil {
		d.Fatal(err)
		return err
	}
	d.TokenReady(token.Preview(8), token.ExpiresAt)

	name := "Demo product " + productID.String()[:8]
	d.Registering(productID.String(), name)
	_, err = client.Products.Register(ctx, applifting.RegisterProductRequest{
		ID:          productID,
		Name:        name,
		Description: "Registered by the applifting demo",
	})
	switch {
	case errors.Is(err, apierror.ErrConflict):
		d.AlreadyRegistered(productID.String())
	case err != nil:
		d.Fatal(err)
		return err
	default:
		d.Registered(productID.String())
	}

	d.FetchingOffers(productID.String())
	offers, err := client.Offers.List(ctx, productID)
	if err != nil {
		d.Fatal(err)
		return err
	}

	rows := make([]tui.OfferRow, 0, len(offers))
	for _, o := range offers {
		rows = append(rows, tui.OfferRow{
			ID:           o.ID.String(),
			Price:        o.Price,
			ItemsInStock: o.ItemsInStock,
		})
	}
	d.OffersReady(rows)
	return nil
}
