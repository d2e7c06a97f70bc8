// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"strings"

	"github.com/staranto/sheetctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	StartingDir string
}

// Namespace is the subcommand name, which is also the config namespace. A
// leading flag such as --help means there is none.
func (m Meta) Namespace() string {
	if len(m.Args) > 1 && !strings.HasPrefix(m.Args[1], "-") {
		return m.Args[1]
	}
	return ""
}
