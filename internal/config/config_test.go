// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig sets SHEETCTL_CFG to point to a test config file.
// Returns cleanup function that should be deferred.
func setupTestConfig(t *testing.T, testdataFile string) (cleanup func()) {
	t.Helper()

	configPath := filepath.Join("testdata", testdataFile)
	absPath, err := filepath.Abs(configPath)
	assert.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("SHEETCTL_CFG", absPath)

	// Reset the global Config to force reload
	Config = Type{}

	return func() {
		Config = Type{}
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "test-api-key", cfg.Data["key"])
				assert.Equal(t, "sheet-123", cfg.Data["spreadsheet"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				c, ok := cfg.Data["cache"].(map[string]interface{})
				assert.True(t, ok, "cache should be a map")
				r, ok := c["redis"].(map[string]interface{})
				assert.True(t, ok, "redis should be a map")
				assert.Equal(t, "localhost:6379", r["addr"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["color"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				years, ok := cfg.Data["years"].([]interface{})
				assert.True(t, ok)
				assert.Len(t, years, 2)
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Setenv("SHEETCTL_CFG", "/nonexistent/sheetctl.yaml")
	Config = Type{}
	defer func() { Config = Type{} }()

	cfg, err := Load(filepath.Join("testdata", "simple.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", cfg.Data["spreadsheet"])
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("SHEETCTL_CFG", "/nonexistent/path/sheetctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_StandardLocations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHEETCTL_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", t.TempDir())
	Config = Type{}
	defer func() { Config = Type{} }()

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)

	abs, err := filepath.Abs(filepath.Join("testdata", "simple.yaml"))
	require.NoError(t, err)
	require.NoError(t, copyFile(abs, filepath.Join(dir, FileName)))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Source)
}

func TestLoad_SHEETCTL_CFG_IsDirectory(t *testing.T) {
	t.Setenv("SHEETCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{
			name:     "simple string value",
			testFile: "simple.yaml",
			key:      "spreadsheet",
			want:     "sheet-123",
		},
		{
			name:     "nested string value",
			testFile: "nested.yaml",
			key:      "cache.redis.addr",
			want:     "localhost:6379",
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []string{"default-value"},
			want:         "default-value",
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			wantErr:  true,
		},
		{
			name:     "non-string value",
			testFile: "mixed-types.yaml",
			key:      "version",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			_, _ = Load()

			got, err := GetString(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{
			name:     "int value",
			testFile: "mixed-types.yaml",
			key:      "version",
			want:     1,
		},
		{
			name:     "float value converted to int",
			testFile: "mixed-types.yaml",
			key:      "timeout",
			want:     30,
		},
		{
			name:     "nested int value",
			testFile: "nested.yaml",
			key:      "cache.redis.db",
			want:     2,
		},
		{
			name:         "missing key with default",
			testFile:     "simple.yaml",
			key:          "missing",
			defaultValue: []int{60},
			want:         60,
		},
		{
			name:     "missing key without default",
			testFile: "simple.yaml",
			key:      "missing",
			wantErr:  true,
		},
		{
			name:     "non-int value",
			testFile: "simple.yaml",
			key:      "spreadsheet",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestConfig(t, tt.testFile)
			defer cleanup()

			_, _ = Load()

			got, err := GetInt(tt.key, tt.defaultValue...)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBoolAndSlice(t *testing.T) {
	cleanup := setupTestConfig(t, "mixed-types.yaml")
	defer cleanup()

	b, err := GetBool("color")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = GetBool("spreadsheet")
	assert.ErrorIs(t, err, ErrType)

	b, err = GetBool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	years, err := GetStringSlice("years")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, years)

	attrs, err := GetStringSlice("attrs")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "sheet", "points"}, attrs)

	_, err = GetStringSlice("version")
	assert.ErrorIs(t, err, ErrType)

	def, err := GetStringSlice("missing", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, def)
}

func TestDecode(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	var c struct {
		Backend string        `yaml:"backend"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
	}
	require.NoError(t, Decode("cache", &c))
	assert.Equal(t, "redis", c.Backend)
	assert.Equal(t, time.Hour, c.TTL)
	assert.Equal(t, 2, c.Redis.DB)

	untouched := struct{ X string }{X: "keep"}
	require.NoError(t, Decode("nope", &untouched))
	assert.Equal(t, "keep", untouched.X)

	var wrong struct {
		Redis int `yaml:"redis"`
	}
	assert.Error(t, Decode("cache", &wrong))
}

func TestDecode_Layout(t *testing.T) {
	cleanup := setupTestConfig(t, "layout.yaml")
	defer cleanup()

	var l struct {
		Events     string            `yaml:"events"`
		YearGroups map[string]string `yaml:"year_groups"`
	}
	require.NoError(t, Decode("layout", &l))
	assert.Equal(t, "Events!A1:C", l.Events)
	assert.Equal(t, map[string]string{"7": "B2:D40", "8": "F2:H40"}, l.YearGroups)
}

func TestConfig_GetWithNamespace(t *testing.T) {
	cleanup := setupTestConfig(t, "nested.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	Config.Namespace = "cache"

	val, err := Config.get("backend")
	assert.NoError(t, err)
	assert.Equal(t, "redis", val)

	// Falls back to the root when the namespace lacks the key.
	val, err = Config.get("rq.year")
	assert.NoError(t, err)
	assert.Equal(t, "7", val)
}

func TestConfig_LazyLoad(t *testing.T) {
	cleanup := setupTestConfig(t, "simple.yaml")
	defer cleanup()

	val, err := GetString("key")
	assert.NoError(t, err)
	assert.Equal(t, "test-api-key", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}

func TestGetString_NamespaceFallback(t *testing.T) {
	cleanup := setupTestConfig(t, "namespace.yaml")
	defer cleanup()

	_, err := Load()
	assert.NoError(t, err)

	SetNamespace("rq")
	val, err := GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "yaml", val)

	b, err := GetBool("titles")
	assert.NoError(t, err)
	assert.True(t, b)

	SetNamespace("eq")
	val, err = GetString("output")
	assert.NoError(t, err)
	assert.Equal(t, "text", val)

	_, err = GetString("nonexistent")
	assert.ErrorIs(t, err, ErrNoKey)
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o600)
}
