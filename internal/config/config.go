// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked for in the standard locations.
const FileName = "sheetctl.yaml"

var (
	ErrNotFound = errors.New("config file not found")
	ErrNoKey    = errors.New("no valid path found")
	ErrType     = errors.New("unexpected value type")
)

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

var Config Type

func init() {
	_, _ = Load()
}

// Load reads the config file. An explicit path wins over SHEETCTL_CFG, which
// wins over the standard locations.
func Load(cfgFilePath ...string) (Type, error) {
	var path string
	if len(cfgFilePath) > 0 && cfgFilePath[0] != "" {
		path = cfgFilePath[0]
	} else {
		p, err := getConfigPath()
		if err != nil {
			return Type{}, err
		}
		path = p
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	Config = Type{
		Source:    path,
		Namespace: Config.Namespace,
		Data:      data}

	return Config, nil
}

// SetNamespace makes lookups try "<ns>.<key>" before "<key>".
func SetNamespace(ns string) {
	Config.Namespace = ns
}

// get traverses the map using a dotted key path
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		keys := strings.Split(key, ".")
		var current interface{} = cfg.Data

		success := true
		for _, key := range keys {
			m, ok := current.(map[string]interface{})
			if !ok {
				success = false
				break
			}
			current, ok = m[key]
			if !ok {
				success = false
				break
			}
		}

		if success {
			return current, nil
		}
	}

	return nil, fmt.Errorf("%w among: %v", ErrNoKey, candidateKeys)
}

func ensureLoaded() {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
}

func GetString(key string, defaultValue ...string) (string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrType, key)
	}

	return s, nil
}

func GetInt(key string, defaultValue ...int) (int, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	// YAML numbers may be unmarshaled as int/float64 depending on content.
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %s is not an int", ErrType, key)
	}
}

func GetBool(key string, defaultValue ...bool) (bool, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a bool", ErrType, key)
	}
	return b, nil
}

// GetStringSlice accepts a YAML sequence or a single comma separated string.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a list", ErrType, key)
	}
}

// Decode unmarshals the subtree at key into out. A missing key leaves out
// untouched and is not an error.
func Decode(key string, out any) error {
	ensureLoaded()

	val, err := Config.get(key)
	if err != nil {
		log.Debugf("config: %s not set", key)
		return nil
	}

	b, err := yaml.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s: %w", key, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func getConfigPath() (string, error) {
	if env := os.Getenv("SHEETCTL_CFG"); env != "" {
		fileInfo, err := os.Stat(env)
		if err != nil {
			return "", fmt.Errorf("%w: SHEETCTL_CFG=%s", ErrNotFound, env)
		}
		if fileInfo.IsDir() {
			return "", fmt.Errorf("SHEETCTL_CFG=%s points to a directory", env)
		}
		log.Debugf("using config file: %s", env)
		return env, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", fmt.Errorf("%w in standard locations", ErrNotFound)
}
