// Package prompt handles interactive terminal input: masked password
// entry and one-time token collection.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TokenLength is the required length of a one-time token.
const TokenLength = 6

// ValidToken reports whether s is exactly six ASCII digits.
func ValidToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Token reads a 6-digit token from r, reprompting on w until the input
// is valid. Returns an error only if the reader is exhausted.
func Token(r io.Reader, w io.Writer) (string, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "YubiKey token (%d digits): ", TokenLength)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		token := strings.TrimSpace(scanner.Text())
		if ValidToken(token) {
			return token, nil
		}
		fmt.Fprintf(w, "Error: token must be exactly %d digits. Please try again.\n", TokenLength)
	}
}

// Password reads a password from the terminal without echoing it.
func Password(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
