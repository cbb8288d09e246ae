package r2

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultURLExpiry is how long presigned display URLs stay valid.
const DefaultURLExpiry = 30 * time.Minute

// ErrNotFound is returned when a blob does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Client stores photo blobs in an S3-compatible R2 bucket. It implements
// gallery.FileStore and gallery.URIRewriter.
type Client struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
}

// NewClient creates an R2 client for one bucket. Objects are stored under
// prefix, which may be empty.
func NewClient(endpoint, bucket, prefix, accessKeyID, accessKeySecret string) (*Client, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no R2 bucket configured")
	}
	if accessKeyID == "" || accessKeySecret == "" {
		return nil, fmt.Errorf("no R2 credentials configured")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			accessKeySecret,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return &Client{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		expiry:  DefaultURLExpiry,
	}, nil
}

// SetURLExpiry changes the lifetime of presigned display URLs.
func (c *Client) SetURLExpiry(d time.Duration) {
	if d > 0 {
		c.expiry = d
	}
}

func (c *Client) objectKey(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// storageURI returns s3://bucket/key for an object name.
func (c *Client) storageURI(name string) string {
	return "s3://" + c.bucket + "/" + c.objectKey(name)
}

// keyFromURI extracts the object key from an s3:// URI of this bucket.
func (c *Client) keyFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "s3://"+c.bucket+"/")
	if !ok || rest == "" {
		return "", fmt.Errorf("not an object of bucket %s: %q", c.bucket, uri)
	}
	return rest, nil
}

// Write decodes base64Data and uploads it as image/jpeg.
func (c *Client) Write(ctx context.Context, name, base64Data string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.objectKey(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s: %w", name, err)
	}
	return c.storageURI(name), nil
}

// Read downloads a blob and returns it base64 encoded.
func (c *Client) Read(ctx context.Context, name string) (string, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to get %s: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ObjectExists checks if a blob exists in the bucket.
func (c *Client) ObjectExists(ctx context.Context, name string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(name)),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, err
}

// Delete removes a blob. S3 deletes are idempotent, so the object is
// checked first to report blobs that were already gone.
func (c *Client) Delete(ctx context.Context, name string) error {
	exists, err := c.ObjectExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to head %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	_, err = c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.objectKey(name)),
	})
	return err
}

// Rewrite turns an s3:// storage URI into a presigned GET URL.
func (c *Client) Rewrite(ctx context.Context, storageURI string) (string, error) {
	key, err := c.keyFromURI(storageURI)
	if err != nil {
		return "", err
	}
	request, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign GetObject: %w", err)
	}
	return request.URL, nil
}
