package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/adapter/driving/tui"
	"github.com/ericfisherdev/gitswitch/internal/application"
	"github.com/ericfisherdev/gitswitch/internal/domain/model"
	"github.com/ericfisherdev/gitswitch/internal/style"
)

var scanCmd = &cobra.Command{
	Use:     "scan [roots...]",
	GroupID: GroupWorkspace,
	Short:   "Reconcile every repository under the workspace roots",
	Long: `Discover the repositories under each root and reconcile each one:

  - unbound repositories whose email matches an identity are bound to it
  - bindings to removed identities are dropped
  - bound repositories without config, or with a drifted SSH command, get
    their identity re-applied
  - repositories whose email differs from their identity are reported, and
    in a terminal you are asked whether to switch or override

Repositories with a detached HEAD are skipped.`,
	RunE: runScan,
}

var (
	scanNoPrompt bool
	scanVerbose  bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanNoPrompt, "no-prompt", false, "Report mismatches without asking")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Show every repository, not just changes")
}

func runScan(cmd *cobra.Command, args []string) error {
	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	results := app.Session.ScanRoots(cmd.Context(), roots)
	printScanResults(out(cmd), results, scanVerbose)

	if scanNoPrompt || !isTerminal() {
		reportDecisions(out(cmd))
		return nil
	}
	return promptDecisions(cmd)
}

var resultLabels = map[application.WatchResult]string{
	application.WatchAutoBound:      "bound to matching identity",
	application.WatchBindingDropped: "binding dropped (identity removed)",
	application.WatchApplied:        "identity applied",
	application.WatchSSHReapplied:   "SSH command re-applied",
	application.WatchMismatch:       "identity mismatch",
	application.WatchDetachedHead:   "skipped (detached HEAD)",
	application.WatchUnbound:        "no identity bound",
	application.WatchConsistent:     "ok",
}

// quietResults are omitted from non-verbose output.
var quietResults = map[application.WatchResult]bool{
	application.WatchUnbound:       true,
	application.WatchConsistent:    true,
	application.WatchNotRepository: true,
}

func printScanResults(w io.Writer, results []application.ScanResult, verbose bool) {
	counts := make(map[application.WatchResult]int)
	for _, r := range results {
		counts[r.Result]++

		if r.Err != nil {
			fmt.Fprintf(w, "%s %s: %s\n", style.ErrorPrefix, r.RepoPath, style.Error.Render(r.Err.Error()))
			continue
		}
		if quietResults[r.Result] && !verbose {
			continue
		}

		prefix := style.SuccessPrefix
		switch r.Result {
		case application.WatchMismatch:
			prefix = style.WarningPrefix
		case application.WatchUnbound, application.WatchDetachedHead, application.WatchConsistent:
			prefix = style.ArrowPrefix
		}
		fmt.Fprintf(w, "%s %s: %s\n", prefix, r.RepoPath, resultLabels[r.Result])
	}

	fmt.Fprintf(w, "%s\n", style.Dim.Render(fmt.Sprintf("%d repositories scanned, %d consistent, %d unbound, %d mismatched",
		len(results), counts[application.WatchConsistent], counts[application.WatchUnbound], counts[application.WatchMismatch])))
}

// reportDecisions prints the pending mismatches without resolving them.
func reportDecisions(w io.Writer) {
	pending := app.Engine.Decisions().Pending()
	if len(pending) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, d := range pending {
		warn(w, "%s", tui.Message(d.Mismatch))
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Run 'gitswitch scan' in a terminal to resolve %d mismatches.\n", len(pending))
}

// promptDecisions asks the user about each pending mismatch in turn.
func promptDecisions(cmd *cobra.Command) error {
	ctx := cmd.Context()
	for _, d := range app.Engine.Decisions().Pending() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := resolveDecision(ctx, cmd, d); err != nil {
			// One failed resolution does not stop the others.
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", style.ErrorPrefix, err)
		}
	}
	return nil
}

func resolveDecision(ctx context.Context, cmd *cobra.Command, d model.Decision) error {
	resolution, err := tui.PromptMismatch(cmd.InOrStdin(), out(cmd), d.Mismatch)
	if err != nil {
		return err
	}

	switch resolution {
	case model.ResolutionSwitch:
		identity, ok, err := tui.PickIdentity(cmd.InOrStdin(), out(cmd), "Select a Git identity", app.Identities.GetAll(), "")
		if err != nil {
			return err
		}
		if !ok {
			// Leave the decision pending; the next scan asks again.
			return nil
		}
		if err := app.Engine.Resolve(ctx, d, model.ResolutionSwitch, identity.ID); err != nil {
			return fmt.Errorf("failed to switch identity in %s: %w", d.RepoPath, err)
		}
		success(out(cmd), "Switched to identity: %s", identity.Label)

	case model.ResolutionOverride:
		if err := app.Engine.Resolve(ctx, d, model.ResolutionOverride, ""); err != nil {
			if errors.Is(err, application.ErrNoMatchingIdentity) {
				return fmt.Errorf("cannot override %s: no identity uses %s", d.RepoPath, currentEmail(d))
			}
			return err
		}
		if b, ok := app.Bindings.GetBinding(d.RepoPath); ok {
			if id, ok := app.Identities.Get(b.IdentityID); ok {
				success(out(cmd), "Repository bound to identity: %s", id.Label)
			}
		}

	default:
		if err := app.Engine.Resolve(ctx, d, model.ResolutionCancel, ""); err != nil {
			return err
		}
		slog.Debug("mismatch left as is", "repo", d.RepoPath)
	}

	app.Session.RefreshRepo(ctx, d.RepoPath)
	return nil
}

func currentEmail(d model.Decision) string {
	if d.Mismatch.Current == nil {
		return "the current email"
	}
	return d.Mismatch.Current.Email
}
