package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/style"
)

var identityCmd = &cobra.Command{
	Use:     "identity",
	Aliases: []string{"id"},
	GroupID: GroupIdentity,
	Short:   "Manage identities",
	Long: `Manage the identities gitswitch can apply to repositories.

An identity is a label, a committer name and email, and the path of the SSH
private key used for the repository's remotes. Commands that take an identity
accept its id or its label.`,
	RunE: requireSubcommand,
}

var identityAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an identity",
	Long: `Add a new identity. The email must look like an address and the SSH key
path must point at an existing file; key material is rejected.

Example:
  gitswitch identity add --label Work --name "Jane Doe" --email jane@corp.example --ssh-key ~/.ssh/id_work`,
	Args: cobra.NoArgs,
	RunE: runIdentityAdd,
}

var identityListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List identities",
	Args:    cobra.NoArgs,
	RunE:    runIdentityList,
}

var identityUpdateCmd = &cobra.Command{
	Use:   "update <identity>",
	Short: "Change fields of an identity",
	Long: `Change one or more fields of an identity. Only the flags given are
changed, and only those are validated.

Example:
  gitswitch identity update Work --email jane.doe@corp.example`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentityUpdate,
}

var identityRemoveCmd = &cobra.Command{
	Use:     "remove <identity>",
	Aliases: []string{"rm"},
	Short:   "Remove an identity",
	Long: `Remove an identity and its stored token. Repositories bound to it keep
their binding until the next scan drops it.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentityRemove,
}

var (
	identityLabel      string
	identityName       string
	identityEmail      string
	identitySSHKey     string
	identityGitHubUser string
)

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityAddCmd)
	identityCmd.AddCommand(identityListCmd)
	identityCmd.AddCommand(identityUpdateCmd)
	identityCmd.AddCommand(identityRemoveCmd)

	for _, c := range []*cobra.Command{identityAddCmd, identityUpdateCmd} {
		c.Flags().StringVar(&identityLabel, "label", "", "Display label, e.g. Work")
		c.Flags().StringVar(&identityName, "name", "", "Committer name (user.name)")
		c.Flags().StringVar(&identityEmail, "email", "", "Committer email (user.email)")
		c.Flags().StringVar(&identitySSHKey, "ssh-key", "", "Path of the SSH private key")
		c.Flags().StringVar(&identityGitHubUser, "github-user", "", "GitHub username, for token verification")
	}
	for _, name := range []string{"label", "name", "email", "ssh-key"} {
		_ = identityAddCmd.MarkFlagRequired(name)
	}
}

func runIdentityAdd(cmd *cobra.Command, args []string) error {
	id, err := app.Identities.Add(cmd.Context(), model.IdentityFields{
		Label:          strings.TrimSpace(identityLabel),
		Name:           strings.TrimSpace(identityName),
		Email:          strings.TrimSpace(identityEmail),
		SSHKeyPath:     strings.TrimSpace(identitySSHKey),
		GitHubUsername: strings.TrimSpace(identityGitHubUser),
	})
	if err != nil {
		return fmt.Errorf("failed to add identity: %w", err)
	}

	success(out(cmd), "Identity added: %s %s", id.Label, style.Dim.Render("("+id.ID+")"))
	return nil
}

func runIdentityList(cmd *cobra.Command, args []string) error {
	w := out(cmd)
	identities := app.Identities.GetAll()
	if len(identities) == 0 {
		fmt.Fprintln(w, "No identities configured. Run 'gitswitch identity add' to add one.")
		return nil
	}

	for _, id := range identities {
		fmt.Fprintf(w, "%s  %s <%s>\n", style.Bold.Render(id.Label), id.Name, id.Email)
		fmt.Fprintf(w, "    %s %s\n", style.Dim.Render("key:"), id.SSHKeyPath)
		if id.GitHubUsername != "" {
			fmt.Fprintf(w, "    %s %s\n", style.Dim.Render("github:"), id.GitHubUsername)
		}
		n := len(app.Bindings.GetBindingsForIdentity(id.ID))
		fmt.Fprintf(w, "    %s %s  %s %d\n", style.Dim.Render("id:"), id.ID, style.Dim.Render("repos:"), n)
	}
	return nil
}

func runIdentityUpdate(cmd *cobra.Command, args []string) error {
	id, err := app.Identities.Lookup(args[0])
	if err != nil {
		return err
	}

	var upd model.IdentityUpdate
	flags := cmd.Flags()
	set := func(flag string, value string, field **string) {
		if flags.Changed(flag) {
			v := strings.TrimSpace(value)
			*field = &v
		}
	}
	set("label", identityLabel, &upd.Label)
	set("name", identityName, &upd.Name)
	set("email", identityEmail, &upd.Email)
	set("ssh-key", identitySSHKey, &upd.SSHKeyPath)
	set("github-user", identityGitHubUser, &upd.GitHubUsername)

	if upd.IsEmpty() {
		return errors.New("nothing to update: pass at least one of --label, --name, --email, --ssh-key, --github-user")
	}

	updated, err := app.Identities.Update(cmd.Context(), id.ID, upd)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}

	success(out(cmd), "Identity updated: %s", updated.Label)
	if upd.Email != nil || upd.Name != nil || upd.SSHKeyPath != nil {
		if n := len(app.Bindings.GetBindingsForIdentity(id.ID)); n > 0 {
			fmt.Fprintf(out(cmd), "  %d bound repositories are updated on the next scan.\n", n)
		}
	}
	return nil
}

func runIdentityRemove(cmd *cobra.Command, args []string) error {
	id, err := app.Identities.Lookup(args[0])
	if err != nil {
		return err
	}

	w := out(cmd)
	if bound := app.Bindings.GetBindingsForIdentity(id.ID); len(bound) > 0 {
		warn(w, "%d repositories are bound to %s; their bindings are dropped on the next scan:", len(bound), id.Label)
		for _, b := range bound {
			fmt.Fprintf(w, "    %s\n", b.RepoPath)
		}
	}

	if err := app.Identities.Delete(cmd.Context(), id.ID); err != nil {
		if errors.Is(err, application.ErrIdentityNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove identity: %w", err)
	}

	success(w, "Identity removed: %s", id.Label)
	return nil
}
