package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bookmehq/bookme/internal/auth"
	"github.com/bookmehq/bookme/internal/domain"
)

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage platform staff principals",
	}

	cmd.AddCommand(staffCreateCmd())

	return cmd
}

func staffCreateCmd() *cobra.Command {
	var (
		password  string
		firstName string
		lastName  string
		owner     bool
		operator  bool
	)

	cmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a platform staff principal",
		Long:  "Creates an active, admin-surface-eligible principal. With --owner the principal also becomes a platform operator; flag grants bypass the API's escalation guard, so this command is for bootstrap and break-glass use only.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			if password == "" {
				return errors.New("--password is required")
			}

			ctx := cmd.Context()
			_, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			now := time.Now()
			p := &domain.Principal{
				ID:                   uuid.New(),
				Email:                email,
				PasswordHash:         hash,
				FirstName:            firstName,
				LastName:             lastName,
				IsActive:             true,
				PlatformOwner:        owner,
				PlatformOperator:     operator,
				AdminSurfaceEligible: true,
				CreatedAt:            now,
				UpdatedAt:            now,
			}

			if err := store.Principals().Create(ctx, p); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return fmt.Errorf("principal %s already exists", email)
				}
				return err
			}

			fmt.Printf("created %s (%s)\n", email, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().BoolVar(&owner, "owner", false, "Grant the platform owner flag")
	cmd.Flags().BoolVar(&operator, "operator", false, "Grant the platform operator flag")

	return cmd
}
