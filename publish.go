package certify

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Publisher uploads a rendered certificate and returns its public location.
type Publisher interface {
	Publish(ctx context.Context, identity string, document []byte) (*PublicationResult, error)
}

// Compile-time interface checks
var (
	_ Publisher = (*S3Publisher)(nil)
	_ Publisher = (*FilePublisher)(nil)
)

// pdfContentType is the content type set on every published certificate.
const pdfContentType = "application/pdf"

// ObjectKey derives the deterministic object key for an identity.
func ObjectKey(identity string) string {
	return identity + ".pdf"
}

// s3API abstracts the S3 client for testing.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads certificates to an S3 bucket with public-read access.
type S3Publisher struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Publisher creates a publisher for the given bucket. baseURL
// overrides the public address ("https://<bucket>.s3.amazonaws.com" when
// empty); pass it when the bucket sits behind a CDN or custom domain.
func NewS3Publisher(client *s3.Client, bucket, baseURL string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, baseURL: baseURL}
}

// Publish uploads the PDF bytes under <identity>.pdf and returns the
// deterministic public URL. No signed or expiring URL is involved.
func (p *S3Publisher) Publish(ctx context.Context, identity string, document []byte) (*PublicationResult, error) {
	key := ObjectKey(identity)

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document),
		ACL:         s3types.ObjectCannedACLPublicRead,
		ContentType: aws.String(pdfContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return &PublicationResult{
		ObjectKey: key,
		PublicURL: p.publicURL(key),
	}, nil
}

// publicURL derives the retrieval URL the store uses for public objects.
func (p *S3Publisher) publicURL(key string) string {
	if p.baseURL != "" {
		return strings.TrimSuffix(p.baseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
}

// FilePublisher writes certificates to a local directory. Used for offline
// runs where no object store is reachable.
type FilePublisher struct {
	dir string
}

// NewFilePublisher creates a publisher rooted at dir, creating it if needed.
func NewFilePublisher(dir string) (*FilePublisher, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return &FilePublisher{dir: dir}, nil
}

// Publish writes the PDF under <identity>.pdf and returns a file URL.
func (p *FilePublisher) Publish(_ context.Context, identity string, document []byte) (*PublicationResult, error) {
	key := ObjectKey(identity)

	path := filepath.Join(p.dir, key)
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &PublicationResult{
		ObjectKey: key,
		PublicURL: "file://" + abs,
	}, nil
}
