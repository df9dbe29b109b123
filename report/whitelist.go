package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrWhitelist marks failures to read a whitelist file.
var ErrWhitelist = errors.New("whitelist unavailable")

// Whitelist holds accepted findings keyed by their first two tokens
// ("<signature> <STATUS>").
type Whitelist struct {
	entries map[string]bool
}

// LoadWhitelist reads a whitelist file.
func LoadWhitelist(path string) (*Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWhitelist, err)
	}
	defer f.Close()

	w, err := ParseWhitelist(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWhitelist, path, err)
	}
	return w, nil
}

// ParseWhitelist reads whitelist entries. Blank lines and lines starting
// with '#' are ignored.
func ParseWhitelist(r io.Reader) (*Whitelist, error) {
	w := &Whitelist{entries: make(map[string]bool)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, ok := leadingTokens(line); ok {
			w.entries[key] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return w, nil
}

// Matches reports whether the first two tokens of a report line equal an entry.
func (w *Whitelist) Matches(line string) bool {
	if w == nil {
		return false
	}
	key, ok := leadingTokens(line)
	return ok && w.entries[key]
}

// Len returns the number of distinct entries.
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

func leadingTokens(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	return fields[0] + " " + fields[1], true
}
