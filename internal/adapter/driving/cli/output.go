package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ericfisherdev/gitswitch/internal/style"
)

// isTerminal reports whether prompts can be shown. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", style.SuccessPrefix, fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", style.WarningPrefix, style.Warning.Render(fmt.Sprintf(format, args...)))
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
