// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"

	awsx "github.com/staranto/sheetctl/internal/aws"
	"github.com/staranto/sheetctl/internal/cacheutil"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Options selects and configures a Store. Namespace partitions entries
// (directory, key prefix or object prefix) and is usually the spreadsheet id.
type Options struct {
	Backend   string        `yaml:"backend"`
	Namespace string        `yaml:"-"`
	Dir       string        `yaml:"dir"`
	TTL       time.Duration `yaml:"ttl"`
	Redis     struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	S3 struct {
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
		Region   string `yaml:"region"`
		Profile  string `yaml:"profile"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"s3"`
}

// Open builds the Store described by opts. An empty backend means disk. When
// SHEETCTL_CACHE disables caching the result is always Null.
func Open(ctx context.Context, opts Options) (Store, error) {
	if !cacheutil.Enabled() {
		log.Debug("cache disabled by environment")
		return Null{}, nil
	}

	backend := opts.Backend
	if backend == "" {
		backend = BackendDisk
	}
	log.Debugf("cache backend: %s", backend)

	switch backend {
	case BackendNone:
		return Null{}, nil

	case BackendMemory:
		return NewMemory(), nil

	case BackendDisk:
		base := opts.Dir
		if base == "" {
			dir, ok := cacheutil.Dir()
			if !ok {
				log.Warn("no cache directory could be resolved, caching disabled")
				return Null{}, nil
			}
			base = dir
		}
		var subdirs []string
		if opts.Namespace != "" {
			subdirs = append(subdirs, opts.Namespace)
		}
		return NewDisk(base, subdirs...), nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Redis.Addr,
			Password: opts.Redis.Password,
			DB:       opts.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Redis.Addr, err)
		}
		prefix := opts.Redis.Prefix
		if prefix == "" {
			prefix = "sheetctl"
		}
		if opts.Namespace != "" {
			prefix += ":" + opts.Namespace
		}
		return NewRedis(client, prefix, opts.TTL), nil

	case BackendSQLite:
		p := opts.SQLite.Path
		if p == "" {
			base, ok, err := cacheutil.EnsureBaseDir()
			if err != nil {
				return nil, err
			}
			if !ok {
				return Null{}, nil
			}
			p = filepath.Join(base, "cache.db")
		}
		return NewSQLite(p, opts.Namespace)

	case BackendS3:
		if opts.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 cache requires a bucket")
		}
		cfg, err := awsx.LoadAWSConfig(ctx,
			awsx.WithProfile(opts.S3.Profile),
			awsx.WithRegion(opts.S3.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		prefix := opts.S3.Prefix
		if opts.Namespace != "" {
			prefix = filepath.ToSlash(filepath.Join(prefix, opts.Namespace))
		}
		return NewS3(awsx.NewS3(cfg, opts.S3.Endpoint), opts.S3.Bucket, prefix), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
}
