// pkg/cli/shell.go
package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/pingcap/errors"
)

// Shell reads commands for the REPL. A command is one line, unless a
// quoted word is still open at the end of the line, in which case the
// following lines belong to it.
type Shell struct {
	reader    *bufio.Reader
	output    io.Writer
	errOutput io.Writer

	// prompt is shown for new commands
	prompt string

	// continuePrompt is shown while a quoted word is open
	continuePrompt string

	history    []string
	maxHistory int
}

// NewShell creates a shell over the given streams.
// If errOutput is nil, errors are written to output.
func NewShell(input io.Reader, output, errOutput io.Writer) *Shell {
	var reader *bufio.Reader
	if input != nil {
		reader = bufio.NewReader(input)
	}
	if errOutput == nil {
		errOutput = output
	}

	return &Shell{
		reader:         reader,
		output:         output,
		errOutput:      errOutput,
		prompt:         "shareable> ",
		continuePrompt: "      ...> ",
		maxHistory:     1000,
	}
}

// SetPrompt changes the primary prompt string.
func (s *Shell) SetPrompt(prompt string) {
	s.prompt = prompt
}

// ReadLine reads a single line from input, stripping trailing whitespace.
// It returns the line and whether EOF was reached.
func (s *Shell) ReadLine() (string, bool) {
	line, eof := s.readRaw()
	return strings.TrimRight(line, " \t"), eof
}

// readRaw reads a line keeping everything but the line terminator.
func (s *Shell) readRaw() (string, bool) {
	if s.reader == nil {
		return "", true
	}
	line, err := s.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err != nil
}

// ReadCommand reads one command, which spans several lines while a quote
// is open. It returns the command and whether EOF was reached.
func (s *Shell) ReadCommand() (string, bool) {
	var lines []string
	for {
		if s.output != nil {
			if len(lines) == 0 {
				io.WriteString(s.output, s.prompt)
			} else {
				io.WriteString(s.output, s.continuePrompt)
			}
		}

		// trailing blanks may belong to an open quoted word
		line, eof := s.readRaw()
		if eof && strings.TrimSpace(line) == "" && len(lines) == 0 {
			return "", true
		}

		lines = append(lines, line)
		combined := strings.Join(lines, "\n")
		if IsComplete(combined) {
			combined = strings.TrimRight(combined, " \t")
			if trimmed := strings.TrimSpace(combined); trimmed != "" {
				s.AddHistory(trimmed)
			}
			return combined, eof
		}
		if eof {
			return combined, true
		}
	}
}

// IsComplete reports whether every quoted word in cmd is closed.
func IsComplete(cmd string) bool {
	_, err := splitFields(cmd)
	return err == nil
}

var errUnclosedQuote = errors.New("unclosed quote")

// splitFields splits a command into words. A word may be quoted with ' or
// "; inside it the quote character is written twice.
func splitFields(cmd string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		inWord bool
		quote  rune
	)
	runes := []rune(cmd)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == quote {
				if i+1 < len(runes) && runes[i+1] == quote {
					cur.WriteRune(r)
					i++
					continue
				}
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				fields = append(fields, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, errUnclosedQuote
	}
	if inWord {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// AddHistory adds a command to the history.
func (s *Shell) AddHistory(cmd string) {
	// Don't add duplicates of the last entry
	if len(s.history) > 0 && s.history[len(s.history)-1] == cmd {
		return
	}

	s.history = append(s.history, cmd)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// History returns a copy of the command history.
func (s *Shell) History() []string {
	result := make([]string, len(s.history))
	copy(result, s.history)
	return result
}

// ClearHistory removes all entries from the command history.
func (s *Shell) ClearHistory() {
	s.history = nil
}
