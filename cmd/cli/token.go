package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/auth"
	"github.com/iho/gobooks/internal/infrastructure/config"
)

var loadConfig = config.Load

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		Long:  `Issue a token signed with JWT_SECRET, or --secret when given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || ttl == 0 {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if secret == "" {
					secret = cfg.JWTSecret
				}
				if ttl == 0 {
					ttl = cfg.JWTExpiration
				}
			}
			if secret == "" {
				return errors.New("no signing secret: set JWT_SECRET or pass --secret")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{
				ID:    userID,
				Email: email,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token")
	cmd.Flags().StringVar(&email, "email", "", "User email placed in the token")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAccountant), "Role: admin, finance_manager, accountant or view_only")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret, overrides JWT_SECRET")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime, defaults to JWT_EXPIRATION")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
