package action

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Commands writes GitHub Actions workflow commands. It is safe for
// concurrent use.
type Commands struct {
	mu sync.Mutex
	w  io.Writer
}

// NewCommands returns a Commands writing to w.
func NewCommands(w io.Writer) *Commands {
	return &Commands{w: w}
}

// Warning emits a ::warning:: annotation.
func (c *Commands) Warning(msg string) {
	c.issue("warning", msg)
}

// Notice emits a ::notice:: annotation.
func (c *Commands) Notice(msg string) {
	c.issue("notice", msg)
}

func (c *Commands) issue(name, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "::%s::%s\n", name, escapeData(msg))
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// SetOutputs appends step outputs to the file at path using the multiline
// delimiter syntax. An empty path prints name=value lines to fallback.
func SetOutputs(path string, fallback io.Writer, outputs [][2]string) error {
	if path == "" {
		for _, kv := range outputs {
			if _, err := fmt.Fprintf(fallback, "%s=%s\n", kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open outputs: %w", err)
	}
	defer f.Close()

	for _, kv := range outputs {
		delim := "ghadelimiter_" + uuid.NewString()
		if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", kv[0], delim, kv[1], delim); err != nil {
			return fmt.Errorf("write output %s: %w", kv[0], err)
		}
	}
	return nil
}
