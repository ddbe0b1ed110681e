// Package audit runs pydocstyle over a source text and reports its findings.
package audit

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/model"
)

// DefaultCommand is the checker binary looked up on PATH.
const DefaultCommand = "pydocstyle"

// DefaultTimeout bounds a run when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrToolMissing means the checker binary could not be found.
var ErrToolMissing = errors.New("docstring checker not installed")

// Violation is one finding, with the tool's fields passed through as-is.
type Violation struct {
	File       string `yaml:"file"`
	Line       int    `yaml:"line"`
	Definition string `yaml:"definition"`
	Code       string `yaml:"code"`
	Message    string `yaml:"message"`
}

// Auditor runs an external docstring checker.
type Auditor struct {
	Command    string
	Args       []string
	Convention model.Convention
	Timeout    time.Duration
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithCommand overrides the checker binary.
func WithCommand(cmd string) Option {
	return func(a *Auditor) {
		if cmd != "" {
			a.Command = cmd
		}
	}
}

// WithArgs appends extra arguments passed before the file path.
func WithArgs(args ...string) Option {
	return func(a *Auditor) {
		a.Args = append(a.Args, args...)
	}
}

// WithConvention selects the checker's convention profile.
func WithConvention(c model.Convention) Option {
	return func(a *Auditor) {
		a.Convention = c
	}
}

// WithTimeout bounds a single run.
func WithTimeout(d time.Duration) Option {
	return func(a *Auditor) {
		a.Timeout = d
	}
}

// New returns an Auditor running pydocstyle with the Google profile unless
// configured otherwise.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		Command:    DefaultCommand,
		Convention: model.Google,
		Timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ConventionFlag maps a docstring convention to pydocstyle's --convention.
func ConventionFlag(c model.Convention) string {
	switch c {
	case model.Google:
		return "google"
	case model.NumPy:
		return "numpy"
	default:
		return "pep257"
	}
}

// Check writes source to a temporary .py file, runs the checker on it and
// returns its findings. The temporary file is removed on every path.
func (a *Auditor) Check(ctx context.Context, source string) ([]Violation, error) {
	tmp, err := os.CreateTemp("", "docgen-*.py")
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(source); err != nil {
		tmp.Close()
		return nil, errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "closing temp file")
	}

	return a.CheckFile(ctx, tmpPath)
}

// CheckFile runs the checker on an existing file.
func (a *Auditor) CheckFile(ctx context.Context, path string) ([]Violation, error) {
	bin, err := exec.LookPath(a.Command)
	if err != nil {
		return nil, errors.WithHint(errors.Mark(errors.Wrapf(err, "looking up %s", a.Command), ErrToolMissing),
			"install it with: pip install pydocstyle")
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(a.Args)+2)
	args = append(args, "--convention="+ConventionFlag(a.Convention))
	args = append(args, a.Args...)
	args = append(args, path)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	violations := ParseOutput(stdout.String())

	logger.Logger.Debugw("docstring check finished",
		logger.FieldFile, path,
		logger.FieldCommand, a.Command,
		logger.FieldCount, len(violations),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if runErr != nil {
		if cmdCtx.Err() != nil {
			return nil, errors.Wrapf(cmdCtx.Err(), "%s did not finish", a.Command)
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || len(violations) == 0 {
			return nil, errors.WithDetail(errors.Wrapf(runErr, "running %s", a.Command),
				strings.TrimSpace(stderr.String()))
		}
	}
	return violations, nil
}

// headerRe matches "path:line <where the problem is>:".
var headerRe = regexp.MustCompile(`^(.+):(\d+) (.+):\s*$`)

// codeRe matches the indented "D103: message" line that follows a header.
var codeRe = regexp.MustCompile(`^\s+([A-Z]\d+):\s*(.*)$`)

// ParseOutput reads pydocstyle's two-line finding format. Lines that do not
// fit the format are ignored.
func ParseOutput(out string) []Violation {
	var violations []Violation
	var pending *Violation

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if m := codeRe.FindStringSubmatch(line); m != nil && pending != nil {
			pending.Code = m[1]
			pending.Message = m[2]
			violations = append(violations, *pending)
			pending = nil
			continue
		}
		if m := headerRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				pending = nil
				continue
			}
			pending = &Violation{File: m[1], Line: n, Definition: m[3]}
			continue
		}
		pending = nil
	}
	return violations
}
