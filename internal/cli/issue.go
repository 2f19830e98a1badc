package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/scan-token-service/internal/auth"
)

func newIssueCmd(opts *options) *cobra.Command {
	var (
		claimsJSON string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Sign a token valid for one hour",
		Example: `  tokenctl issue --claims '{"sub":"visitor-17","room":"B12"}'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			claims := auth.Claims{}
			if claimsJSON != "" {
				if err := json.Unmarshal([]byte(claimsJSON), &claims); err != nil {
					return fmt.Errorf("parse --claims: %w", err)
				}
			}

			svc, err := opts.tokenService()
			if err != nil {
				return err
			}
			token, expiresAt, err := svc.IssueWithExpiry(claims)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"token":      token,
					"expires_at": expiresAt.UTC().Format(time.RFC3339),
				})
			}
			_, err = fmt.Fprintln(out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&claimsJSON, "claims", "", "claims as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print token and expiry as JSON")
	return cmd
}
