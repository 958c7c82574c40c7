package application

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GenerateSSHCommand returns the core.sshCommand value that pins git to one
// key and ignores the user's ssh config:
//
//	ssh -i "<resolved-key-path>" -F /dev/null
func GenerateSSHCommand(keyPath string) string {
	resolved := ExpandHome(keyPath)
	if filepath.Separator == '\\' {
		resolved = strings.ReplaceAll(resolved, `\`, "/")
	}
	return fmt.Sprintf(`ssh -i "%s" -F /dev/null`, resolved)
}
