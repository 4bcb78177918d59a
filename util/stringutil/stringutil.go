package stringutil

import "strings"

// JoinNonEmpty joins the non-empty elements of s with sep, the same way
// strings.Join does but first dropping empty strings.
func JoinNonEmpty(s []string, sep string) string {
	var nonEmpty []string
	for _, v := range s {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	return strings.Join(nonEmpty, sep)
}

// QuotedStrings returns the elements of s quoted with single quotes, useful
// for building a string which can be pasted into a shell.
func QuotedStrings(s []string) []string {
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = "'" + v + "'"
	}
	return quoted
}

// SplitAfterNBytes splits s into chunks of at most n bytes each. It panics
// if n is not positive.
func SplitAfterNBytes(s string, n int) []string {
	if n <= 0 {
		panic("n must be positive")
	}
	if s == "" {
		return nil
	}

	var chunks []string
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	chunks = append(chunks, s)
	return chunks
}
