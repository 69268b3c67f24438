// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no --config flag is given and the file exists.
	DefaultPath = ".lineedit.yaml"

	DefaultFooterPrefix = "FOOTERTEST"
	DefaultFooterWidth  = 8
	DefaultBackupSuffix = ".bak"
	DefaultPreviewLimit = 20
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes, starting from Default()
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🧾 Footer describes one footer dialect: the literal prefix, the zero-padded
// digit width and an optional explicit validation pattern.
type Footer struct {
	Prefix      string `json:"prefix" yaml:"prefix"`
	Width       int    `json:"width" yaml:"width"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	VerifyCount bool   `json:"verify_count,omitempty" yaml:"verify_count,omitempty"`
}

// 💾 Backup configures the session backup companion file.
type Backup struct {
	Suffix string `json:"suffix" yaml:"suffix"`
}

// 🗒️ Audit configures the side-files recording deleted and replaced lines.
type Audit struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"` // empty means next to the target file
	Compress bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// 🗺️ Dialect selects a footer for files whose path matches a doublestar glob.
type Dialect struct {
	Match  string `json:"match" yaml:"match"`
	Footer Footer `json:"footer" yaml:"footer"`
}

// 📚 Config represents the complete configuration. Once validated it is
// treated as an immutable value and handed to constructors by copy.
type Config struct {
	Footer       Footer    `json:"footer" yaml:"footer"`
	Backup       Backup    `json:"backup" yaml:"backup"`
	Audit        Audit     `json:"audit" yaml:"audit"`
	PreviewLimit int       `json:"preview_limit" yaml:"preview_limit"`
	Dialects     []Dialect `json:"dialects,omitempty" yaml:"dialects,omitempty"`
}

// 🏭 Default returns the built-in configuration.
func Default() Config {
	return Config{
		Footer: Footer{
			Prefix: DefaultFooterPrefix,
			Width:  DefaultFooterWidth,
		},
		Backup: Backup{
			Suffix: DefaultBackupSuffix,
		},
		Audit: Audit{
			Enabled: true,
		},
		PreviewLimit: DefaultPreviewLimit,
	}
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return Config{}, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return Config{}, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Errorf("validating config: %w", err)
	}

	return *cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file is only an error
// when the caller asked for it explicitly.
func LoadOrDefault(ctx context.Context, path string, explicit bool) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
			return Default(), nil
		}
		return Config{}, errors.Errorf("checking config file: %w", err)
	}
	return Load(ctx, path)
}

// 🔍 Validate checks if the configuration is valid and fills dialect gaps
// from the default footer.
func (cfg *Config) Validate() error {
	if err := cfg.Footer.validate("footer"); err != nil {
		return err
	}
	if cfg.Backup.Suffix == "" {
		return errors.Errorf("backup.suffix is required")
	}
	if strings.ContainsRune(cfg.Backup.Suffix, filepath.Separator) {
		return errors.Errorf("backup.suffix must not contain a path separator")
	}
	if cfg.PreviewLimit < 0 {
		return errors.Errorf("preview_limit must not be negative")
	}
	if cfg.Audit.Dir != "" {
		cfg.Audit.Dir = filepath.Clean(cfg.Audit.Dir)
	}

	for i := range cfg.Dialects {
		d := &cfg.Dialects[i]
		if d.Match == "" {
			return errors.Errorf("dialects[%d].match is required", i)
		}
		if !doublestar.ValidatePattern(d.Match) {
			return errors.Errorf("dialects[%d].match: invalid glob %q", i, d.Match)
		}
		if d.Footer.Width == 0 {
			d.Footer.Width = cfg.Footer.Width
		}
		if err := d.Footer.validate(fmt.Sprintf("dialects[%d].footer", i)); err != nil {
			return err
		}
	}

	return nil
}

func (f Footer) validate(field string) error {
	if f.Prefix == "" && f.Pattern == "" {
		return errors.Errorf("%s.prefix is required", field)
	}
	if f.Width <= 0 {
		return errors.Errorf("%s.width must be positive", field)
	}
	return nil
}

// 🗺️ FooterFor returns the footer dialect for a file. The first dialect whose
// glob matches wins; globs without a slash are matched against the base name.
func (cfg Config) FooterFor(file string) Footer {
	slashed := filepath.ToSlash(file)
	for _, d := range cfg.Dialects {
		target := slashed
		if !strings.Contains(d.Match, "/") {
			target = path.Base(slashed)
		}
		if ok, err := doublestar.Match(d.Match, target); err == nil && ok {
			return d.Footer
		}
	}
	return cfg.Footer
}

// 📝 String returns a short description of the footer dialect
func (f Footer) String() string {
	if f.Pattern != "" {
		return fmt.Sprintf("%s<%d digits> /%s/", f.Prefix, f.Width, f.Pattern)
	}
	return fmt.Sprintf("%s<%d digits>", f.Prefix, f.Width)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
