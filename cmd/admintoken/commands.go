package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	jwttoken "domainfactor/internal/jwt_token"
	"domainfactor/internal/platform/config"
	"domainfactor/pkg/platform/middleware/admin"
)

// loadAdminConfig is replaced in tests.
var loadAdminConfig = func() config.AdminConfig {
	return config.FromEnv().Admin
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "admintoken",
		Short:        "Issue and verify domain factor admin tokens",
		SilenceUsage: true,
	}
	cmd.AddCommand(newIssueCmd(), newVerifyCmd())
	return cmd
}

func newIssueCmd() *cobra.Command {
	var subject string
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject = strings.TrimSpace(subject)
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			cfg := loadAdminConfig()
			if cfg.JWTSigningKey == "" {
				return fmt.Errorf("ADMIN_JWT_SIGNING_KEY is not set")
			}
			token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience).
				GenerateToken(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, recorded as the audit actor")
	cmd.Flags().StringVar(&role, "role", admin.RoleAdmin, "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Validate a token and print its subject and role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadAdminConfig()
			service := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
			claims, err := jwttoken.NewAdminValidator(service).ValidateAdminToken(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subject=%s role=%s\n", claims.Subject, claims.Role)
			return nil
		},
	}
}
