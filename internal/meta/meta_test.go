// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespace(t *testing.T) {
	assert.Equal(t, "rq", Meta{Args: []string{"sheetctl", "rq", "--year", "7"}}.Namespace())
	assert.Equal(t, "", Meta{Args: []string{"sheetctl"}}.Namespace())
	assert.Equal(t, "", Meta{}.Namespace())
}

func TestNamespace_Flag(t *testing.T) {
	assert.Equal(t, "", Meta{Args: []string{"sheetctl", "--help"}}.Namespace())
}
