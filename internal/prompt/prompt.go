// Package prompt asks the user to confirm or edit an attachment name.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"pasterename/internal/naming"
)

// SkipInput is the answer that declines a rename.
const SkipInput = "-"

// IsInteractive returns true if stdin is a terminal. Piped or redirected
// input is not interactive.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Request describes one attachment waiting for a name.
type Request struct {
	Original  string // current path of the attachment
	Proposed  string // rendered stem, "" when the template produced nothing usable
	Extension string // without the dot

	// Physical selects the sanitizer that keeps path separators, since
	// names under a physical root may carry sub-directories.
	Physical bool
}

// Prompter reads answers line by line from one reader. A single scanner is
// kept so buffered input is not lost between prompts.
type Prompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

// NewPrompter creates a Prompter. Use os.Stdin and os.Stdout for normal
// operation, or buffers for testing.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(reader),
		writer:  writer,
	}
}

// ConfirmName shows the attachment and the proposed name and reads the
// stem to use. An empty answer accepts the proposal. SkipInput, end of
// input, or an answer that sanitizes to nothing declines the rename.
func (p *Prompter) ConfirmName(req Request) (stem string, ok bool, err error) {
	fmt.Fprintf(p.writer, "\nRename attachment:\n")
	fmt.Fprintf(p.writer, "  File: %s\n", req.Original)
	if req.Proposed != "" {
		fmt.Fprintf(p.writer, "  Proposed: %s.%s\n", req.Proposed, req.Extension)
		fmt.Fprintf(p.writer, "\nNew name [%s] (enter to accept, %s to skip): ", req.Proposed, SkipInput)
	} else {
		fmt.Fprintf(p.writer, "\nNew name (%s or enter to skip): ", SkipInput)
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("error reading input: %w", err)
		}
		return "", false, nil
	}

	input := strings.TrimSpace(p.scanner.Text())
	switch input {
	case SkipInput:
		return "", false, nil
	case "":
		input = req.Proposed
	}

	stem = sanitize(input, req.Physical)
	if stem == "" {
		if input != "" {
			fmt.Fprintf(p.writer, "Name '%s' has no usable characters, skipping.\n", input)
		}
		return "", false, nil
	}
	return stem, true, nil
}

func sanitize(s string, physical bool) string {
	if physical {
		return naming.FSFilename(s)
	}
	return naming.Filename(s)
}
