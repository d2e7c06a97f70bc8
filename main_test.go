// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/sheetctl/internal/config"
)

func TestMangleArguments(t *testing.T) {
	_, err := config.Load(filepath.Join("testdata", "sheetctl.yaml"))
	require.NoError(t, err)
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults inserted after the command",
			args: []string{"sheetctl", "rq", "-e", "100m"},
			want: []string{"sheetctl", "rq", "--year", "7", "--titles", "-e", "100m"},
		},
		{
			name: "named set at its position",
			args: []string{"sheetctl", "rq", "-e", "100m", "@wide", "-y", "8"},
			want: []string{"sheetctl", "rq", "-e", "100m", "-a", "points,form", "-y", "8"},
		},
		{
			name: "comma string set",
			args: []string{"sheetctl", "eq"},
			want: []string{"sheetctl", "eq", "--output", "json"},
		},
		{
			name: "unknown set is dropped",
			args: []string{"sheetctl", "eq", "@nope", "-t"},
			want: []string{"sheetctl", "eq", "-t"},
		},
		{
			name: "no config for command",
			args: []string{"sheetctl", "fq", "-t"},
			want: []string{"sheetctl", "fq", "-t"},
		},
		{
			name: "help wins",
			args: []string{"sheetctl", "rq", "-e", "x", "-h"},
			want: []string{"sheetctl", "rq", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}

func TestRealMain_Version(t *testing.T) {
	assert.Equal(t, 0, realMain([]string{"sheetctl", "--version"}))
}
