package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func domainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Manage routing keys in bulk",
	}

	cmd.AddCommand(domainsConvertCmd())

	return cmd
}

func domainsConvertCmd() *cobra.Command {
	var (
		from   string
		to     string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite every routing key ending in one suffix to another",
		Long:  "Rewrites hostnames in bulk, e.g. --from .bookme.dev --to .localhost when pulling a production snapshot into a development environment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from == "" || to == "" {
				return errors.New("--from and --to are required")
			}

			ctx := cmd.Context()
			directory, _, closer, err := openDirectory(ctx)
			if err != nil {
				return err
			}
			defer closer()

			renames, err := directory.ConvertSuffix(ctx, from, to, dryRun)
			if err != nil {
				return err
			}

			if len(renames) == 0 {
				fmt.Printf("no routing keys end in %q\n", from)
				return nil
			}

			verb := "renamed"
			if dryRun {
				verb = "would rename"
			}
			for _, r := range renames {
				fmt.Printf("%s %s -> %s\n", verb, r.From, r.To)
			}
			fmt.Printf("%d routing key(s)\n", len(renames))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Suffix to replace (required)")
	cmd.Flags().StringVar(&to, "to", "", "Replacement suffix (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report renames without applying them")

	return cmd
}
