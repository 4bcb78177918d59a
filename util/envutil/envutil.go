package envutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/cmake-tools/kitscan/util/sliceutil"
	"github.com/cmake-tools/kitscan/util/stringutil"
)

const sep = string(os.PathListSeparator)

// AppendToPathList appends a string to another string containing a list
// of paths, separated by os.PathListSeparator (like the PATH and
// LD_LIBRARY_PATH environment variables). It doesn't add duplicates and
// removes any empty strings from the list.
func AppendToPathList(list string, value ...string) string {
	if len(value) == 0 {
		return list
	}

	values := strings.Split(list, sep)

	for _, newVal := range value {
		if !sliceutil.Contains(values, newVal) {
			values = append(values, newVal)
		}
	}

	return stringutil.JoinNonEmpty(values, sep)
}

// Like os.Setenv but uses the specified environment instead of the
// current process environment.
func Setenv(env []string, key, value string) ([]string, error) {
	if strings.ContainsAny(key, "="+"\x00") {
		return nil, errors.Errorf("invalid key: %q", key)
	}

	if strings.ContainsRune(value, '\x00') {
		return nil, errors.Errorf("invalid value: %q", value)
	}

	kv := key + "=" + value

	// Check if the key is already set
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			// Replace the value
			env[i] = kv
			return env, nil
		}
	}

	// The key is not set yet, append it
	env = append(env, kv)
	return env, nil
}

func QuotedEnv(env []string) []string {
	var quotedEnv []string
	for _, e := range env {
		s := strings.SplitN(e, "=", 2)
		k, v := s[0], s[1]
		quotedEnv = append(quotedEnv, fmt.Sprintf("%s='%s'", k, v))
	}
	return quotedEnv
}

// QuotedCommandWithEnv returns a string which can be executed in a
// shell to run the specified command with the specified environment
// variables. Useful for debug output to be able to run commands manually.
//
// Note: When the result is printed, make sure that env doesn't contain
// arbitrary environment variables from the host to avoid leaking
// secrets in the log output.
func QuotedCommandWithEnv(args []string, env []string) string {
	quotedStrings := append(QuotedEnv(env), stringutil.QuotedStrings(args)...)
	return strings.Join(quotedStrings, " ")
}
