package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/well-registry/internal/auth"
	"github.com/couchcryptid/well-registry/internal/config"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		p     domain.Principal
		perms []string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadTooling()
			if err != nil {
				return err
			}
			if cfg.AuthJWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}
			for _, perm := range perms {
				p.Permissions = append(p.Permissions, domain.Permission(perm))
			}
			token, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.SuperuserEmails).Issue(p, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Username, "user", "", "Subject username (required)")
	cmd.Flags().StringVar(&p.Email, "email", "", "Email address")
	cmd.Flags().StringSliceVar(&p.Groups, "group", nil, "Agency group membership")
	cmd.Flags().BoolVar(&p.Superuser, "superuser", false, "Grant superuser")
	cmd.Flags().StringSliceVar(&perms, "permission", nil, "Permissions (default all for group members)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
