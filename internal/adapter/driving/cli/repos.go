package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/style"
)

var reposCmd = &cobra.Command{
	Use:     "repos [roots...]",
	GroupID: GroupWorkspace,
	Short:   "List repositories and their identities",
	Long: `List the repositories under each workspace root, including nested ones,
with the identity each is bound to. Roots default to the configured roots, or
the working directory when none are configured.`,
	RunE: runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)
}

// resolveRoots registers args as session roots and returns the roots to
// operate on.
func resolveRoots(args []string) ([]string, error) {
	if len(args) > 0 {
		roots := make([]string, 0, len(args))
		for _, a := range args {
			dir, err := workingDir(a)
			if err != nil {
				return nil, err
			}
			roots = append(roots, dir)
		}
		app.Session.AddRoots(roots...)
		return roots, nil
	}

	if roots := app.Session.Roots(); len(roots) > 0 {
		return roots, nil
	}

	wd, err := workingDir("")
	if err != nil {
		return nil, err
	}
	app.Session.AddRoots(wd)
	return []string{wd}, nil
}

func runRepos(cmd *cobra.Command, args []string) error {
	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	w := out(cmd)
	for _, root := range roots {
		repos := app.Session.ReposForRoot(cmd.Context(), root)
		fmt.Fprintln(w, style.Bold.Render(root))
		if len(repos) == 0 {
			fmt.Fprintf(w, "  %s\n", style.Dim.Render("No Git repositories found"))
			continue
		}
		for _, info := range repos {
			a := app.Status.Annotate(info)
			desc := a.Description
			if a.Mismatch {
				desc = style.Warning.Render(desc)
			} else if info.Binding == nil {
				desc = style.Dim.Render(desc)
			}
			fmt.Fprintf(w, "  %-24s %s  %s\n", info.Name, desc, style.Dim.Render(info.Path))
		}
	}
	return nil
}
