// Package s3meta fetches per-project metadata objects from the
// documentation object store. Requests are authenticated with AWS SigV4
// request signing via the AWS SDK.
package s3meta

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// metadataSuffix is the fixed object-key suffix under each project's
// lower-cased slug prefix.
const metadataSuffix = "/v/__main/metadata.json"

// MetadataKey returns the object key for a project's metadata file.
func MetadataKey(slug string) string {
	return strings.ToLower(slug) + metadataSuffix
}

// Option configures a Client.
type Option func(*s3.Options)

// WithEndpoint points the client at an alternate S3 endpoint (test doubles,
// MinIO) using path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *s3.Options) { o.HTTPClient = hc }
}

// Client reads metadata objects from one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// NewClient creates a client for the given bucket, signing requests with
// the supplied key pair.
func NewClient(bucket, region, accessKeyID, secretAccessKey string, opts ...Option) *Client {
	options := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Client{
		s3:     s3.New(options),
		bucket: bucket,
	}
}

// ProjectMetadata fetches and parses the metadata object for a project
// slug. Fetch and parse failures both surface as *MetadataError.
func (c *Client) ProjectMetadata(ctx context.Context, slug string) (*Metadata, error) {
	key := MetadataKey(slug)

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &MetadataError{Handle: slug, Reason: "fetch metadata object " + key, Err: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &MetadataError{Handle: slug, Reason: "read metadata object " + key, Err: err}
	}

	var meta Metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, &MetadataError{Handle: slug, Reason: "parse metadata object " + key, Err: err}
	}
	return &meta, nil
}
