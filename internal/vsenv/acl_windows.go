//go:build windows

package vsenv

import (
	"os"

	"github.com/hectane/go-acl"
)

// grantExecute grants the current user execute access to path's ACL.
// os.WriteFile's permission bits don't translate to execute rights on
// Windows, so the activation script needs this before cmd.exe can run it.
func grantExecute(path string) error {
	return acl.Chmod(path, os.FileMode(0o700))
}
