package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bookmehq/bookme/internal/domain"
	"github.com/bookmehq/bookme/internal/rolesync"
)

func rolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage system roles across tenants",
	}

	cmd.AddCommand(rolesResyncCmd())

	return cmd
}

func rolesResyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Reconcile every tenant's system roles with the platform definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			maintainer := rolesync.NewMaintainer(store.Tenants(), store.Roles(), log.Logger)

			report, err := maintainer.Resync(ctx, domain.SystemRoleDefinitions(), dryRun)
			if err != nil {
				return err
			}

			printResyncReport(report)

			if len(report.Failures) > 0 {
				return fmt.Errorf("%d tenant(s) failed to resync", len(report.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without applying them")

	return cmd
}

func printResyncReport(report *rolesync.Report) {
	if report.Empty() {
		fmt.Printf("%d tenant(s) checked, nothing to do\n", report.Tenants)
		return
	}

	verb := "applied"
	if report.DryRun {
		verb = "would apply"
	}
	fmt.Printf("%d tenant(s) checked, %s %d change(s)\n", report.Tenants, verb, len(report.Changes))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TENANT\tROLE\tACTION\tADDED\tREMOVED")
	for _, c := range report.Changes {
		action := "update"
		if c.Created {
			action = "create"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", c.TenantName, c.Role, action, len(c.Added), len(c.Removed))
	}
	_ = w.Flush()

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", f.TenantName, f.Err)
	}
}
