// Package publish uploads exported prefabs to S3.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// S3API is the subset of s3manager.Uploader used here.
type S3API interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Uploader puts prefab files under Prefix in Bucket.
type Uploader struct {
	Bucket string
	Prefix string
	api    S3API
	newID  func() string
}

// New builds an Uploader from the default AWS credential chain.
func New(bucket, region, prefix string) (*Uploader, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewWithAPI(bucket, prefix, s3manager.NewUploader(sess)), nil
}

// NewWithAPI is used by tests to inject a fake S3 client.
func NewWithAPI(bucket, prefix string, api S3API) *Uploader {
	return &Uploader{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		api:    api,
		newID:  func() string { return uuid.NewString() },
	}
}

// Key returns "<prefix>/<name>.vgp". An empty name gets a random UUID.
func (u *Uploader) Key(name string) string {
	name = strings.TrimSuffix(path.Base(name), ".vgp")
	if name == "" || name == "." || name == "/" {
		name = u.newID()
	}
	return path.Join(u.Prefix, name+".vgp")
}

// Upload stores data and returns the object location.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	key := u.Key(name)
	out, err := u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", u.Bucket, key, err)
	}
	return out.Location, nil
}
