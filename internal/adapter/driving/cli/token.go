package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/application"
)

var identityTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage an identity's GitHub token",
	Long: `Store a GitHub personal access token for an identity and check that it
belongs to the identity's GitHub username. Tokens are encrypted at rest with
GITSWITCH_SECRET_KEY.`,
	RunE: requireSubcommand,
}

var identityTokenSetCmd = &cobra.Command{
	Use:   "set <identity> <token>",
	Short: "Store a token for an identity",
	Args:  cobra.ExactArgs(2),
	RunE:  runTokenSet,
}

var identityTokenVerifyCmd = &cobra.Command{
	Use:   "verify <identity>",
	Short: "Check the stored token against GitHub",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenVerify,
}

func init() {
	identityCmd.AddCommand(identityTokenCmd)
	identityTokenCmd.AddCommand(identityTokenSetCmd)
	identityTokenCmd.AddCommand(identityTokenVerifyCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	id, err := app.Identities.Lookup(args[0])
	if err != nil {
		return err
	}
	if err := app.Identities.SetSecretToken(cmd.Context(), id.ID, args[1]); err != nil {
		return err
	}
	success(out(cmd), "Token stored for %s", id.Label)
	return nil
}

func runTokenVerify(cmd *cobra.Command, args []string) error {
	id, err := app.Identities.Lookup(args[0])
	if err != nil {
		return err
	}

	login, err := app.Verifier.Verify(cmd.Context(), id.ID)
	if err != nil {
		var mismatch *application.TokenMismatchError
		if errors.As(err, &mismatch) {
			return fmt.Errorf("token for %s belongs to %s, expected %s", id.Label, mismatch.Actual, mismatch.Expected)
		}
		return fmt.Errorf("failed to verify token for %s: %w", id.Label, err)
	}

	success(out(cmd), "Token for %s authenticates as %s", id.Label, login)
	return nil
}
