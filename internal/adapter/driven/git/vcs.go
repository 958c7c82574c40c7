package git

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/ericfisherdev/gitswitch/internal/domain/port/driven"
)

// New returns the CLI adapter when a git executable is usable and falls back
// to the Native adapter otherwise.
func New(fs afero.Fs, ignore []string) driven.VersionControl {
	scanner := NewScanner(fs, ignore)

	cli := NewCLI(scanner, "")
	if cli.Available() {
		return cli
	}

	slog.Warn("git executable not found, using built-in config support")
	return NewNative(scanner)
}
