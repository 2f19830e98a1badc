package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/scan-token-service/internal/auth"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token]",
		Short: "Verify a token and print its claims",
		Long:  "Verify a token given as argument, or read from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token from stdin: %w", err)
				}
				token = line
			}

			svc, err := opts.tokenService()
			if err != nil {
				return err
			}
			verified, err := svc.Verify(strings.TrimSpace(token))
			if err != nil {
				return fmt.Errorf("%s: %w", auth.Reason(err), err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"header":     verified.Header,
				"claims":     verified.Claims,
				"expires_at": verified.ExpiresAt.UTC().Format(time.RFC3339),
			})
		},
	}
}
