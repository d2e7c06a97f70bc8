// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the slice of the S3 client the store needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores one object per key under Prefix in Bucket. Shared buckets let
// several machines reuse each other's fetches.
type S3 struct {
	api    S3API
	bucket string
	prefix string
}

// NewS3 returns an S3 store.
func NewS3(api S3API, bucket, prefix string) *S3 {
	return &S3{api: api, bucket: bucket, prefix: prefix}
}

func (s *S3) objectKey(key string) string {
	return path.Join(s.prefix, key)
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	return data, true, nil
}

func (s *S3) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put S3 object: %w", err)
	}
	return nil
}

var _ Store = (*S3)(nil)
