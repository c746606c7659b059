package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	applifting "github.com/applifting/applifting-sdk-go"
)

func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Obtain an access token and show when it expires",
		Long: `Obtain an access token, from memory, the token cache or a refresh, and
print a short preview of it. The token itself is never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := getCliContext(cmd)
			if err != nil {
				return err
			}

			token, err := cliCtx.Client.Tokens().ValidToken(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Access Token: %s...\n", token.Preview(8))
			fmt.Fprintf(cmd.OutOrStdout(), "Expires In:   %s\n",
				time.Until(token.ExpiresAt).Round(time.Second))
			return nil
		},
	}
}

func newRegisterCommand() *cobra.Command {
	var (
		id          string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a product",
		Long: `Register a product so the offers service starts tracking it.

Examples:
  # Register with a generated id
  applifting register --name "Desk lamp" --description "Warm white"

  # Register with a chosen id
  applifting register --id 0b9f3b5e-8c0a-4d5e-9a57-3f5b1c6c2a10 --name "Desk lamp"`,
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

			resp, err := cliCtx.Client.Products.Register(cmd.Context(), applifting.RegisterProductRequest{
				ID:          productID,
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Product id (default: a new random UUID)")
	cmd.Flags().StringVar(&name, "name", "", "Product name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Product description")

	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newOffersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "offers <product-id>",
		Short: "List the offers for a registered product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := getCliContext(cmd)
			if err != nil {
				return err
			}

			productID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id: %w", err)
			}

			offers, err := cliCtx.Client.Offers.List(cmd.Context(), productID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRICE\tIN STOCK")
			for _, o := range offers {
				fmt.Fprintf(w, "%s\t%d\t%d\n", o.ID, o.Price, o.ItemsInStock)
			}
			return w.Flush()
		},
	}
}
