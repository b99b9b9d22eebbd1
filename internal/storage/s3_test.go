// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"portfolio/internal/config"
)

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   []byte
	delKey string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	c, err := New(context.Background(), config.S3Config{})
	if err != nil || c != nil {
		t.Fatalf("New() = %v, %v; want nil, nil", c, err)
	}
}

func TestNew_StaticCredentials(t *testing.T) {
	c, err := New(context.Background(), config.S3Config{
		Endpoint: "https://s3.example.com/", Region: "eu-central-1",
		AccessKey: "AK", SecretKey: "SK", Bucket: "pub",
	})
	if err != nil || c == nil {
		t.Fatalf("New() = %v, %v", c, err)
	}
	if got := c.URL("og/a.png"); got != "https://s3.example.com/pub/og/a.png" {
		t.Errorf("URL = %q", got)
	}
}

func TestPutAndDelete(t *testing.T) {
	fake := &fakeS3{}
	c := &Client{s3: fake, bucket: "pub", endpoint: "https://s3.example.com"}
	ctx := context.Background()

	if err := c.Put(ctx, "og/posts/a.png", "image/png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if aws.ToString(fake.put.Bucket) != "pub" || aws.ToString(fake.put.Key) != "og/posts/a.png" {
		t.Errorf("put target = %s/%s", aws.ToString(fake.put.Bucket), aws.ToString(fake.put.Key))
	}
	if fake.put.ACL != s3types.ObjectCannedACLPublicRead {
		t.Errorf("ACL = %q", fake.put.ACL)
	}
	if aws.ToInt64(fake.put.ContentLength) != 3 || len(fake.body) != 3 {
		t.Errorf("length = %d, body = %v", aws.ToInt64(fake.put.ContentLength), fake.body)
	}

	if err := c.Delete(ctx, "og/posts/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fake.delKey != "og/posts/a.png" {
		t.Errorf("deleted %q", fake.delKey)
	}

	fake.err = errors.New("access denied")
	if err := c.Put(ctx, "k", "image/png", nil); !errors.Is(err, fake.err) {
		t.Errorf("Put error = %v", err)
	}
}

func TestURL(t *testing.T) {
	c := &Client{bucket: "pub", endpoint: "https://s3.example.com", publicURL: "https://cdn.example.com"}
	if got := c.URL("og/a.png"); got != "https://cdn.example.com/og/a.png" {
		t.Errorf("URL = %q", got)
	}
	c.publicURL = ""
	if got := c.URL("og/a.png"); got != "https://s3.example.com/pub/og/a.png" {
		t.Errorf("path-style URL = %q", got)
	}
}
