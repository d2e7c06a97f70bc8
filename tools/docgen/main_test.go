// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/sheetctl/internal/command"
)

func TestBuildTLDR(t *testing.T) {
	d := command.CommandDoc{
		Name:     "fq",
		Usage:    "forms query",
		Examples: [][2]string{{"sheetctl fq   -s  name", "sort forms by name"}},
	}
	got := buildTLDR(d)
	assert.Contains(t, got, "# sheetctl-fq\n")
	assert.Contains(t, got, "> Forms query.\n")
	assert.Contains(t, got, "- Sort forms by name:\n\n`sheetctl fq -s name`\n")

	got = buildTLDR(command.CommandDoc{Name: "completion"})
	assert.Contains(t, got, "`sheetctl completion --help`")
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.1")

	require.NoError(t, writeFileIfChanged(path, []byte("one\n"), true))
	info, err := os.Stat(path)
	require.NoError(t, err)
	before := info.ModTime()

	require.NoError(t, os.Chtimes(path, before.Add(-1e9), before.Add(-1e9)))
	require.NoError(t, writeFileIfChanged(path, []byte("one"), true))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Before(before), "unchanged content is not rewritten")

	require.NoError(t, writeFileIfChanged(path, []byte("two"), true))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}
