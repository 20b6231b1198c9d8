package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3ObjectStore keeps the original uploads in a Supabase S3 bucket.
type S3ObjectStore struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewS3ObjectStoreFromEnv builds the store from SUPABASE_* variables. It returns
// nil, nil when the store is not configured.
func NewS3ObjectStoreFromEnv() (*S3ObjectStore, error) {
	region := os.Getenv("SUPABASE_REGION")
	endpoint := os.Getenv("SUPABASE_S3_ENDPOINT")
	accessKey := os.Getenv("SUPABASE_ACCESS_KEY")
	secretKey := os.Getenv("SUPABASE_SECRET_KEY")
	bucket := os.Getenv("SUPABASE_BUCKET")

	if region == "" || endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		log.Println("[NewS3ObjectStoreFromEnv] S3 configuration incomplete, uploads will not be stored")
		return nil, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(endpoint),
		DisableSSL:       aws.Bool(false),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3ObjectStore(s3.New(sess), bucket, os.Getenv("SUPABASE_S3_URL")), nil
}

// NewS3ObjectStore wraps an existing S3 client.
func NewS3ObjectStore(client s3iface.S3API, bucket, publicURL string) *S3ObjectStore {
	return &S3ObjectStore{client: client, bucket: bucket, publicURL: publicURL}
}

// Put uploads body under key and returns its public URL.
func (s *S3ObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		log.Printf("[S3ObjectStore.Put] S3 upload error for %s: %v", key, err)
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return fmt.Sprintf("%s/object/public/%s/%s", s.publicURL, s.bucket, key), nil
}
