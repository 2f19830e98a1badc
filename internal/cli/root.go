// Package cli implements tokenctl, an offline companion for issuing and
// checking scan tokens with the service secret.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/config"
)

type options struct {
	secret string
}

// NewRootCmd builds the tokenctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tokenctl",
		Short:         "Issue and verify scan tokens",
		Long:          "Issue and verify compact HS256 scan tokens using AUTH_TOKEN_SECRET (or --secret).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.secret, "secret", "", "signing secret (defaults to AUTH_TOKEN_SECRET)")

	root.AddCommand(newIssueCmd(opts), newVerifyCmd(opts), newHashKeyCmd())
	return root
}

// Execute runs tokenctl and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) tokenService() (*auth.TokenService, error) {
	secret := o.secret
	if secret == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		secret = cfg.Auth.TokenSecret
	}
	if secret == "" {
		return nil, config.ErrMissingTokenSecret
	}
	return auth.NewTokenService([]byte(secret))
}
