// internal/common/aws/s3.go
package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrInvalidS3URI = errors.New("INVALID_S3_URI")

// S3API is the subset of the S3 client used for resume storage.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ResumeStore keeps uploaded resumes in one bucket under a key prefix.
type ResumeStore struct {
	client S3API
	bucket string
	prefix string
}

func NewResumeStore(client S3API, bucket, prefix string) *ResumeStore {
	return &ResumeStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewS3Client builds the SDK client from a resolved config.
func NewS3Client(cfg awssdk.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

// Upload stores the document and returns its s3:// reference.
func (s *ResumeStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "resume"
	}
	key := uuid.New().String() + "-" + base
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	input := &s3.PutObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = awssdk.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload resume to s3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Open streams the object behind an s3:// reference. The caller closes the reader.
func (s *ResumeStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	return out.Body, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, uri)
	}
	return bucket, key, nil
}
