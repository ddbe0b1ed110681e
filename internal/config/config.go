// Package config reads docgen settings from the [tool.docgen] table of a
// project's pyproject.toml.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/phobologic/docgen/internal/logger"
	"github.com/phobologic/docgen/internal/model"
)

// FileName is the project manifest docgen reads.
const FileName = "pyproject.toml"

const (
	SentinelStart = "# docgen:start"
	SentinelEnd   = "# docgen:end"
)

// ErrUnmanagedTable reports a hand-written [tool.docgen] table.
var ErrUnmanagedTable = errors.New("pyproject.toml already has an unmanaged [tool.docgen] table")

// DefaultThreshold is the coverage gate used when none is configured.
const DefaultThreshold = 80.0

// Config is the [tool.docgen] table. Zero values mean "not set".
type Config struct {
	Style           string   `toml:"style,omitempty"`
	Mode            string   `toml:"mode,omitempty"`
	Threshold       float64  `toml:"threshold,omitempty"`
	ModuleDocstring bool     `toml:"module_docstring,omitempty"`
	Exclude         []string `toml:"exclude,omitempty"`
	Pydocstyle      string   `toml:"pydocstyle,omitempty"`
}

type manifest struct {
	Tool struct {
		Docgen Config `toml:"docgen"`
	} `toml:"tool"`
}

// Load reads dir/pyproject.toml. A missing, unreadable or malformed file
// yields an empty Config; the cause is only logged at debug level.
func Load(dir string) Config {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Logger.Debugw("no project config", logger.FieldFile, path, logger.FieldError, err)
		return Config{}
	}
	cfg, err := Parse(data)
	if err != nil {
		logger.Logger.Debugw("ignoring malformed project config", logger.FieldFile, path, logger.FieldError, err)
		return Config{}
	}
	return cfg
}

// Parse decodes the [tool.docgen] table from manifest bytes.
func Parse(data []byte) (Config, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Config{}, errors.Wrap(err, "decoding pyproject.toml")
	}
	return m.Tool.Docgen, nil
}

// Convention returns the configured style, or fallback when unset or invalid.
func (c Config) Convention(fallback model.Convention) model.Convention {
	if c.Style == "" {
		return fallback
	}
	conv, err := model.ParseConvention(c.Style)
	if err != nil {
		return fallback
	}
	return conv
}

// RewriteMode returns the configured mode, or fallback when unset or invalid.
func (c Config) RewriteMode(fallback model.Mode) model.Mode {
	if c.Mode == "" {
		return fallback
	}
	m, err := model.ParseMode(c.Mode)
	if err != nil {
		return fallback
	}
	return m
}

// CoverageThreshold returns the configured gate or DefaultThreshold.
func (c Config) CoverageThreshold() float64 {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

// Section renders c as a sentinel-wrapped [tool.docgen] table.
func Section(c Config) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(SentinelStart + "\n[tool.docgen]\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", errors.Wrap(err, "encoding [tool.docgen]")
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(SentinelEnd)
	return buf.String(), nil
}

// Apply inserts section into content, replacing an existing sentinel block
// if present or appending if not. A [tool.docgen] table outside the
// sentinels cannot be updated in place and yields ErrUnmanagedTable.
func Apply(content, section string) (string, error) {
	start := strings.Index(content, SentinelStart)
	end := strings.Index(content, SentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(SentinelEnd):], nil
	}
	if hasTable(content) {
		return "", errors.WithHint(ErrUnmanagedTable,
			"remove the existing [tool.docgen] table or wrap it in "+SentinelStart+" / "+SentinelEnd)
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) > 0 {
		content += "\n"
	}
	return content + section + "\n", nil
}

func hasTable(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "[tool.docgen]" {
			return true
		}
	}
	return false
}
