// Package s3store is the artifact-store boundary: finished clips go in, a
// durable URL comes back. The pipeline treats it as a black box.
package s3store

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/clipforge/clipforge/internal/types"
)

// objectAPI is the slice of the S3 client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	client        objectAPI
	bucket        string
	region        string
	publicBaseURL string
}

func New(client objectAPI, bucket, region, publicBaseURL string) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// NewFromEnv builds a store with the default AWS credential chain.
func NewFromEnv(ctx context.Context, bucket, region, publicBaseURL string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, region, publicBaseURL), nil
}

// Upload puts a local file under key and returns its durable location.
func (s *Store) Upload(ctx context.Context, localPath, key, mimeType string) (types.UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("stat artifact: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        f,
		ContentType: &mimeType,
	})
	if err != nil {
		return types.UploadResult{}, fmt.Errorf("upload artifact to s3: %w", err)
	}

	log.Info().Str("bucket", s.bucket).Str("key", key).Int64("size", info.Size()).
		Msg("artifact uploaded")

	return types.UploadResult{
		URL:      s.objectURL(key),
		Path:     key,
		Size:     info.Size(),
		MimeType: mimeType,
	}, nil
}

// Delete removes an uploaded artifact by its store path.
func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &path,
	})
	if err != nil {
		return fmt.Errorf("delete artifact from s3: %w", err)
	}
	return nil
}

func (s *Store) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
