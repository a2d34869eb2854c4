// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"io"

	"github.com/matt-FFFFFF/ffx/internal/schema"
)

// WriteJSONSchema writes the JSON schema of the YAML config file to w,
// for use with editors that validate YAML against a schema.
func WriteJSONSchema(w io.Writer) error {
	return schema.NewGenerator().WriteJSONSchema(w, Config{},
		"ffx configuration",
		"Formatters run by ffx and the files they apply to ("+DefaultFile+")")
}
