package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// readLine prints the prompt and reads a single line from the input, without
// the trailing newline. A last line missing its newline is accepted.
func (c *cliIO) readLine(prompt string) (string, error) {
	fmt.Fprint(c.errOut, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("unable to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// readSecret reads a secret such as a mnemonic or passphrase. On a terminal
// the input isn't echoed, otherwise a plain line is read so that secrets can
// be piped in.
func (c *cliIO) readSecret(prompt string) (string, error) {
	if !c.isTerminal() {
		return c.readLine(prompt)
	}

	fmt.Fprint(c.errOut, prompt)

	// The variable syscall.Stdin is of a different type in the Windows API
	// that's why we need the explicit cast. And of course the linter
	// doesn't like it either.
	secret, err := term.ReadPassword(int(syscall.Stdin)) // nolint:unconvert
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", fmt.Errorf("unable to read input: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}
