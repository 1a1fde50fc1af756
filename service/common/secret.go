package common

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxSecretLineSize caps the first line of the auth file
const maxSecretLineSize = 1 << 20

// LoadSecret reads the first line of the auth file.
// A missing, unreadable or empty file is an ErrAuth.
//
// The secret is not compared against anything yet, the control socket is
// unauthenticated.
func LoadSecret(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty auth file path", ErrAuth)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64), maxSecretLineSize)

	var secret string
	if scanner.Scan() {
		secret = strings.TrimSuffix(scanner.Text(), "\r")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrAuth, path, err)
	}
	if secret == "" {
		return "", fmt.Errorf("%w: %s contains no secret", ErrAuth, path)
	}
	return secret, nil
}
