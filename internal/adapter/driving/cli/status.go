package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/style"
)

var statusCmd = &cobra.Command{
	Use:     "status [path]",
	GroupID: GroupRepo,
	Short:   "Show the identity state of a repository",
	Long: `Show a one-line summary of the repository containing path (default: the
working directory): its bound identity, or the configured email when unbound,
and whether the live config matches.

With --json the full status is printed as JSON, for shell prompts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	dir, err := workingDir(path)
	if err != nil {
		return err
	}

	status, ok := app.Status.Describe(cmd.Context(), dir)
	w := out(cmd)
	if !ok {
		if statusJSON {
			fmt.Fprintln(w, "null")
			return nil
		}
		warn(w, "Not a Git repository")
		return nil
	}

	if statusJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(w, "%s %s\n", style.PrefixForLevel(status.Level), style.ForLevel(status.Level).Render(status.Text))
	if status.Tooltip != "" {
		fmt.Fprintf(w, "  %s\n", style.Dim.Render(status.Tooltip))
	}
	if status.Provider != model.ProviderUnknown && status.Provider != "" {
		remote := string(status.Provider)
		if status.RemoteOwner != "" {
			remote += " (" + status.RemoteOwner + ")"
		}
		fmt.Fprintf(w, "  %s %s\n", style.Dim.Render("remote:"), remote)
	}
	return nil
}
