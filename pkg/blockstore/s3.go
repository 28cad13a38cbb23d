package blockstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/danejoe001/transfer/internal/logger"
	"github.com/danejoe001/transfer/pkg/metrics"
)

// retryConfig controls the S3 backend's exponential backoff.
type retryConfig struct {
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

var defaultRetry = retryConfig{
	maxRetries:        3,
	initialBackoff:    100 * time.Millisecond,
	maxBackoff:        2 * time.Second,
	backoffMultiplier: 2.0,
}

// S3Store is an S3-backed Store, keyed by prefix/path.
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	retry   retryConfig
	metrics metrics.BlockStoreMetrics
}

// NewS3Store returns an S3-backed Store for bucket, prefixing every
// object key with prefix (prefix may be empty). m may be nil to
// disable metrics.
func NewS3Store(client *s3.Client, bucket, prefix string, m metrics.BlockStoreMetrics) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		retry:   defaultRetry,
		metrics: m,
	}
}

func (s *S3Store) Backend() string { return "s3" }

func (s *S3Store) objectKey(p string) string {
	if s.prefix == "" {
		return strings.TrimPrefix(p, "/")
	}
	return path.Join(s.prefix, strings.TrimPrefix(p, "/"))
}

func (s *S3Store) calculateBackoff(attempt int) time.Duration {
	backoff := float64(s.retry.initialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= s.retry.backoffMultiplier
	}
	if backoff > float64(s.retry.maxBackoff) {
		backoff = float64(s.retry.maxBackoff)
	}
	return time.Duration(backoff)
}

func (s *S3Store) Size(ctx context.Context, p string) (size uint64, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("s3", "Size", time.Since(start), err)
		}
	}()

	key := s.objectKey(p)
	var result *s3.HeadObjectOutput
	var lastErr error

	for attempt := 0; attempt <= s.retry.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.calculateBackoff(attempt - 1)
			logger.Debug("blockstore s3: retrying HeadObject", "attempt", attempt, "key", key)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, lastErr = s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if lastErr == nil {
			break
		}
		if isNotFoundError(lastErr) {
			return 0, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		if !isRetryableError(lastErr) {
			break
		}
	}
	if lastErr != nil {
		return 0, fmt.Errorf("blockstore s3: head %s: %w", key, lastErr)
	}
	if result.ContentLength == nil {
		return 0, fmt.Errorf("blockstore s3: %s has no content length", key)
	}
	return uint64(*result.ContentLength), nil
}

func (s *S3Store) ReadRange(ctx context.Context, p string, offset uint64, length uint32) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("s3", "ReadRange", time.Since(start), err)
			if len(data) > 0 {
				s.metrics.RecordBytes("s3", "read", int64(len(data)))
			}
		}
	}()

	if length == 0 {
		return nil, nil
	}

	key := s.objectKey(p)
	end := offset + uint64(length) - 1
	rangeStr := fmt.Sprintf("bytes=%d-%d", offset, end)

	var result *s3.GetObjectOutput
	var lastErr error

	for attempt := 0; attempt <= s.retry.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := s.calculateBackoff(attempt - 1)
			logger.Debug("blockstore s3: retrying GetObject", "attempt", attempt, "key", key, "offset", offset)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, lastErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Range:  aws.String(rangeStr),
		})
		if lastErr == nil {
			break
		}
		if isNotFoundError(lastErr) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		if isInvalidRangeError(lastErr) {
			return nil, nil
		}
		if !isRetryableError(lastErr) {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("blockstore s3: get %s: %w", key, lastErr)
	}
	defer func() { _ = result.Body.Close() }()

	buf := make([]byte, length)
	n, readErr := io.ReadFull(result.Body, buf)
	if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) && !errors.Is(readErr, io.EOF) {
		return nil, fmt.Errorf("blockstore s3: reading body of %s: %w", key, readErr)
	}
	return buf[:n], nil
}

func (s *S3Store) WriteRange(ctx context.Context, p string, offset uint64, reader io.Reader) (n int64, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("s3", "WriteRange", time.Since(start), err)
			if n > 0 {
				s.metrics.RecordBytes("s3", "write", n)
			}
		}
	}()

	if offset != 0 {
		return 0, fmt.Errorf("blockstore s3: partial-object writes at a non-zero offset are not supported")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return 0, fmt.Errorf("blockstore s3: reading upload body: %w", err)
	}

	key := s.objectKey(p)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return 0, fmt.Errorf("blockstore s3: put %s: %w", key, err)
	}
	return int64(len(data)), nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "Throttling", "ThrottlingException", "RequestThrottled", "SlowDown",
			"ProvisionedThroughputExceededException",
			"InternalError", "ServiceUnavailable", "ServiceException", "InternalServiceException":
			return true
		case "NoSuchKey", "NotFound", "AccessDenied", "Forbidden", "InvalidRange", "InvalidRequest":
			return false
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout")
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}

func isInvalidRangeError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "InvalidRange"
	}
	return false
}
