package s3infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/domain"
	"github.com/policy-letter-api/internal/infrastructure/assets"
)

// GetObjectAPI is the S3 call the asset source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// AssetSource reads letter images from a bucket prefix.
type AssetSource struct {
	client GetObjectAPI
	bucket string
	prefix string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	})
}

func NewAssetSource(client GetObjectAPI, bucket, prefix string) *AssetSource {
	return &AssetSource{client: client, bucket: bucket, prefix: prefix}
}

// Load returns the object <prefix>/<name>. A missing key maps to domain.ErrNotFound.
func (s *AssetSource) Load(ctx context.Context, name string) ([]byte, error) {
	if !assets.IsBareName(name) {
		return nil, fmt.Errorf("asset %q: %w", name, domain.ErrBadRequest)
	}
	key := path.Join(s.prefix, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("asset %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	return b, nil
}
