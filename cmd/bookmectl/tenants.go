package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bookmehq/bookme/internal/tenancy"
)

func tenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Inspect and provision tenants",
	}

	cmd.AddCommand(tenantsListCmd(), tenantsRegisterCmd())

	return cmd
}

func tenantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			tenants, err := store.Tenants().List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPARTITION\tSTATUS\tCREATED")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Name, t.PartitionName, t.Status, t.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func tenantsRegisterCmd() *cobra.Command {
	var (
		routingKey   string
		contactEmail string
	)

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Provision a new tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if routingKey == "" {
				return errors.New("--routing-key is required")
			}

			ctx := cmd.Context()
			directory, _, closer, err := openDirectory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			tenant, err := directory.Register(ctx, tenancy.RegisterTenant{
				Name:         args[0],
				RoutingKey:   routingKey,
				ContactEmail: contactEmail,
			})
			if err != nil {
				return err
			}

			fmt.Printf("registered %s (%s) partition=%s\n", tenant.Name, tenant.ID, tenant.PartitionName)
			return nil
		},
	}

	cmd.Flags().StringVar(&routingKey, "routing-key", "", "Routing label or full hostname (required)")
	cmd.Flags().StringVar(&contactEmail, "contact-email", "", "Billing contact")

	return cmd
}
