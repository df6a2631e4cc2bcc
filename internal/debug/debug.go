// Package debug sets up the run log: JSON lines appended to a file in the
// cache directory, plus optional human-readable output on stderr.
package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogName is the default log file name.
const LogName = "solentry.log"

// Options configures Open.
type Options struct {
	Dir     string    // log directory, created if missing
	Name    string    // file name inside Dir
	Level   string    // zerolog level name; empty means info
	Verbose bool      // also write to Console
	Console io.Writer // defaults to os.Stderr
}

// Open returns a logger that appends to Dir/Name. The returned closer
// closes the log file.
func Open(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	name := opts.Name
	if name == "" {
		name = LogName
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = f
	if opts.Verbose {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		w = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, f, nil
}

// Tail returns the last n lines of Dir/Name, oldest first.
func Tail(dir, name string, n int) ([]string, error) {
	if name == "" {
		name = LogName
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}
