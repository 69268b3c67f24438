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
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

type hclFooter struct {
	Prefix      *string `hcl:"prefix,optional"`
	Width       *int    `hcl:"width,optional"`
	Pattern     *string `hcl:"pattern,optional"`
	VerifyCount *bool   `hcl:"verify_count,optional"`
}

func (h *hclFooter) apply(f *Footer) {
	if h == nil {
		return
	}
	if h.Prefix != nil {
		f.Prefix = *h.Prefix
	}
	if h.Width != nil {
		f.Width = *h.Width
	}
	if h.Pattern != nil {
		f.Pattern = *h.Pattern
	}
	if h.VerifyCount != nil {
		f.VerifyCount = *h.VerifyCount
	}
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Footer *hclFooter `hcl:"footer,block"`
		Backup *struct {
			Suffix string `hcl:"suffix"`
		} `hcl:"backup,block"`
		Audit *struct {
			Enabled  *bool   `hcl:"enabled,optional"`
			Dir      *string `hcl:"dir,optional"`
			Compress *bool   `hcl:"compress,optional"`
		} `hcl:"audit,block"`
		PreviewLimit *int `hcl:"preview_limit,optional"`
		Dialects     []struct {
			Match  string     `hcl:"match,label"`
			Footer *hclFooter `hcl:"footer,block"`
		} `hcl:"dialect,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := Default()
	hclCfg.Footer.apply(&cfg.Footer)
	if hclCfg.Backup != nil {
		cfg.Backup.Suffix = hclCfg.Backup.Suffix
	}
	if a := hclCfg.Audit; a != nil {
		if a.Enabled != nil {
			cfg.Audit.Enabled = *a.Enabled
		}
		if a.Dir != nil {
			cfg.Audit.Dir = *a.Dir
		}
		if a.Compress != nil {
			cfg.Audit.Compress = *a.Compress
		}
	}
	if hclCfg.PreviewLimit != nil {
		cfg.PreviewLimit = *hclCfg.PreviewLimit
	}
	for _, d := range hclCfg.Dialects {
		dialect := Dialect{Match: d.Match}
		d.Footer.apply(&dialect.Footer)
		cfg.Dialects = append(cfg.Dialects, dialect)
	}

	return &cfg, nil
}
