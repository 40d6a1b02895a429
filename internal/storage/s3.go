package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"eventmap/internal/models"
)

// objectKey is the fixed key the whole document lives under.
const objectKey = "data/document.json"

// S3Store keeps the document as a single JSON object in an S3-compatible
// bucket. Useful when the host has no persistent disk.
type S3Store struct {
	client *minio.Client
	bucket string
}

// S3Options configures the connection to the object store.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// NewS3Store connects to the object store and ensures the bucket exists.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
	}

	log.Info().Str("endpoint", opts.Endpoint).Str("bucket", opts.Bucket).Msg("connected to object store")
	return &S3Store{client: client, bucket: opts.Bucket}, nil
}

func (s *S3Store) Read(ctx context.Context) (*models.Document, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get document object: %w", err)
	}
	defer object.Close()

	var doc models.Document
	if err := json.NewDecoder(object).Decode(&doc); err != nil {
		// GetObject defers the actual request; a missing key surfaces here.
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to decode document object: %w", err)
	}
	if doc.Addresses == nil {
		doc.Addresses = []models.Address{}
	}
	return &doc, nil
}

func (s *S3Store) Write(ctx context.Context, doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to store document object: %w", err)
	}
	return nil
}
