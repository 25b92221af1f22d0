package certify

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type mockS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (m *mockS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3PublisherPublish(t *testing.T) {
	client := &mockS3{}
	p := &S3Publisher{client: client, bucket: "certificates"}

	document := []byte("%PDF-1.4 fake")
	res, err := p.Publish(context.Background(), "123", document)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if res.ObjectKey != "123.pdf" {
		t.Errorf("object key = %q, want %q", res.ObjectKey, "123.pdf")
	}
	if res.PublicURL != "https://certificates.s3.amazonaws.com/123.pdf" {
		t.Errorf("public URL = %q, want deterministic bucket URL", res.PublicURL)
	}

	in := client.input
	if in == nil {
		t.Fatal("PutObject not called")
	}
	if *in.Bucket != "certificates" || *in.Key != "123.pdf" {
		t.Errorf("put bucket/key = %q/%q", *in.Bucket, *in.Key)
	}
	if in.ACL != s3types.ObjectCannedACLPublicRead {
		t.Errorf("ACL = %q, want public-read", in.ACL)
	}
	if *in.ContentType != pdfContentType {
		t.Errorf("content type = %q, want %q", *in.ContentType, pdfContentType)
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != string(document) {
		t.Error("uploaded body differs from rendered document")
	}
}

func TestS3PublisherBaseURLOverride(t *testing.T) {
	p := &S3Publisher{client: &mockS3{}, bucket: "certificates", baseURL: "https://certs.example.com/"}

	res, err := p.Publish(context.Background(), "u1", []byte("pdf"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if res.PublicURL != "https://certs.example.com/u1.pdf" {
		t.Errorf("public URL = %q, want override-based URL", res.PublicURL)
	}
}

func TestS3PublisherUploadFailure(t *testing.T) {
	p := &S3Publisher{client: &mockS3{err: errors.New("access denied")}, bucket: "certificates"}

	_, err := p.Publish(context.Background(), "u1", []byte("pdf"))
	if !errors.Is(err, ErrPublish) {
		t.Fatalf("error = %v, want ErrPublish", err)
	}
}

func TestFilePublisherPublish(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePublisher(dir)
	if err != nil {
		t.Fatalf("NewFilePublisher failed: %v", err)
	}

	document := []byte("%PDF-1.4 fake")
	res, err := p.Publish(context.Background(), "123", document)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if res.ObjectKey != "123.pdf" {
		t.Errorf("object key = %q, want %q", res.ObjectKey, "123.pdf")
	}
	if !strings.HasPrefix(res.PublicURL, "file://") {
		t.Errorf("public URL = %q, want file URL", res.PublicURL)
	}

	written, err := os.ReadFile(filepath.Join(dir, "123.pdf"))
	if err != nil {
		t.Fatalf("reading published file: %v", err)
	}
	if string(written) != string(document) {
		t.Error("published file differs from rendered document")
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("123"); got != "123.pdf" {
		t.Errorf("ObjectKey = %q, want %q", got, "123.pdf")
	}
}
