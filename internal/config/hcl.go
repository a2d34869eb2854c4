// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Getenv backs the HCL env() function. Tests stub it.
var Getenv = os.Getenv

// hclFile is the HCL form:
//
//	version = 1
//
//	tool "gofmt" {
//	  include = ["**/*.go"]
//	  cmd     = env("GOFMT", "gofmt")
//	  args    = ["-w"]
//	}
type hclFile struct {
	Version int       `hcl:"version"`
	Tools   []hclTool `hcl:"tool,block"`
}

type hclTool struct {
	Name      string    `hcl:"name,label"`
	Include   []string  `hcl:"include,optional"`
	Exclude   []string  `hcl:"exclude,optional"`
	Cmd       string    `hcl:"cmd,optional"`
	Args      []string  `hcl:"args,optional"`
	CheckArgs *[]string `hcl:"check_args,optional"`
}

// envFunc is env(name) or env(name, default).
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		if v := Getenv(args[0].AsString()); v != "" {
			return cty.StringVal(v), nil
		}

		if len(args) > 1 {
			return args[1], nil
		}

		return cty.StringVal(""), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

func parseHCL(name string, data []byte) (*Config, error) {
	var f hclFile
	if err := hclsimple.Decode(name, data, evalContext(), &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseConfig, err)
	}

	c := &Config{Version: f.Version, Tools: make([]ToolConfig, len(f.Tools))}
	for i, t := range f.Tools {
		c.Tools[i] = ToolConfig{
			Name:    t.Name,
			Include: t.Include,
			Exclude: t.Exclude,
			Cmd:     t.Cmd,
			Args:    t.Args,
		}
		if t.CheckArgs != nil {
			c.Tools[i].CheckArgs = *t.CheckArgs
			if c.Tools[i].CheckArgs == nil {
				c.Tools[i].CheckArgs = []string{}
			}
		}
	}

	return c, nil
}
