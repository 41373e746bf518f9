package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Guyuepp/travel-feed/domain"
)

// maxDeleteBatch is the DeleteObjects limit of the S3 API.
const maxDeleteBatch = 1000

type Config struct {
	// "http://127.0.0.1:9000"
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// DeleteAPI is the part of the S3 client the blob store needs.
type DeleteAPI interface {
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type blobStore struct {
	client DeleteAPI
	bucket string
}

var _ domain.BlobStore = (*blobStore)(nil)

// Connect builds an S3 client for an S3 compatible endpoint.
func Connect(cfg Config) *s3.Client {
	return s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	})
}

func NewBlobStore(client DeleteAPI, bucket string) *blobStore {
	return &blobStore{
		client: client,
		bucket: bucket,
	}
}

func (b *blobStore) DeleteObjects(ctx context.Context, keys []string) error {
	var errs []error
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))
		if err := b.deleteBatch(ctx, keys[start:end]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *blobStore) deleteBatch(ctx context.Context, keys []string) error {
	objectIds := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objectIds = append(objectIds, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.bucket),
		Delete: &types.Delete{Objects: objectIds, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete %d objects: %w", len(keys), err)
	}

	if len(output.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(output.Errors))
	for _, e := range output.Errors {
		errs = append(errs, fmt.Errorf("delete object %s: %s %s",
			aws.ToString(e.Key), aws.ToString(e.Code), aws.ToString(e.Message)))
	}
	return errors.Join(errs...)
}
