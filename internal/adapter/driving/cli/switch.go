package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/adapter/driving/tui"
	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
)

var switchCmd = &cobra.Command{
	Use:     "switch [identity]",
	GroupID: GroupRepo,
	Short:   "Apply an identity to the current repository",
	Long: `Write the identity's name, email and SSH command to the local config of
the repository containing the working directory, and bind the repository to
it. Without an argument an identity picker is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwitch,
}

var bindCmd = &cobra.Command{
	Use:     "bind [identity]",
	GroupID: GroupRepo,
	Short:   "Bind the current repository to an identity",
	Long: `Bind the repository containing the working directory to an identity and
apply it. Later scans keep the repository consistent with the binding.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBind,
}

var repoPathFlag string

func init() {
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(bindCmd)

	for _, c := range []*cobra.Command{switchCmd, bindCmd} {
		c.Flags().StringVarP(&repoPathFlag, "repo", "C", "", "Repository path (default: working directory)")
	}
}

func runSwitch(cmd *cobra.Command, args []string) error {
	id, ok, err := applyToCurrentRepo(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to switch identity: %w", err)
	}
	if ok {
		success(out(cmd), "Switched to identity: %s", id.Label)
	}
	return nil
}

func runBind(cmd *cobra.Command, args []string) error {
	id, ok, err := applyToCurrentRepo(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to bind repository: %w", err)
	}
	if ok {
		success(out(cmd), "Repository bound to identity: %s", id.Label)
	}
	return nil
}

// applyToCurrentRepo resolves the repository and the identity, then applies
// and binds. ok is false when the user cancelled the picker.
func applyToCurrentRepo(cmd *cobra.Command, args []string) (model.Identity, bool, error) {
	ctx := cmd.Context()

	dir, err := workingDir(repoPathFlag)
	if err != nil {
		return model.Identity{}, false, err
	}
	repoPath := app.VCS.FindRepoRoot(ctx, dir)
	if repoPath == "" {
		return model.Identity{}, false, fmt.Errorf("%w: %s", application.ErrNotARepository, dir)
	}

	var identity model.Identity
	if len(args) == 1 {
		identity, err = app.Identities.Lookup(args[0])
		if err != nil {
			return model.Identity{}, false, err
		}
	} else {
		var ok bool
		identity, ok, err = pickIdentity(cmd, repoPath)
		if err != nil || !ok {
			return model.Identity{}, false, err
		}
	}

	applied, err := app.Engine.ApplyAndBind(ctx, repoPath, identity.ID)
	if err != nil {
		return model.Identity{}, false, err
	}
	app.Session.RefreshRepo(ctx, repoPath)
	return applied, true, nil
}

// pickIdentity shows the identity picker with the repository's bound
// identity preselected.
func pickIdentity(cmd *cobra.Command, repoPath string) (model.Identity, bool, error) {
	identities := app.Identities.GetAll()
	if len(identities) == 0 {
		return model.Identity{}, false, errors.New("no identities configured; run 'gitswitch identity add' to add one")
	}
	if !isTerminal() {
		return model.Identity{}, false, errors.New("no identity given and not running in a terminal")
	}

	current := ""
	if b, ok := app.Bindings.GetBinding(repoPath); ok {
		current = b.IdentityID
	}
	return tui.PickIdentity(cmd.InOrStdin(), out(cmd), "Select a Git identity", identities, current)
}
