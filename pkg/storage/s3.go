package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures an S3Disk. Endpoint is empty for real AWS.
type S3Options struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
	BaseURL  string
	Prefix   string
}

// S3Disk stores objects in one bucket, optionally under a key prefix.
type S3Disk struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewS3(ctx context.Context, o S3Options) (*S3Disk, error) {
	if o.Bucket == "" {
		return nil, fmt.Errorf("storage/s3: bucket is not configured")
	}
	if o.Region == "" {
		o.Region = "us-east-1"
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(o.Region)}
	if o.Key != "" && o.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.Key, o.Secret, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if o.Endpoint != "" {
		clientOpts = append(clientOpts, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		})
	}

	baseURL := strings.TrimRight(o.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
	}

	return &S3Disk{
		client:  s3.NewFromConfig(cfg, clientOpts...),
		bucket:  o.Bucket,
		prefix:  strings.Trim(o.Prefix, "/"),
		baseURL: baseURL,
	}, nil
}

func (d *S3Disk) key(p string) string {
	p = strings.TrimLeft(path.Clean("/"+p), "/")
	if d.prefix == "" {
		return p
	}
	return d.prefix + "/" + p
}

func (d *S3Disk) Put(ctx context.Context, p string, content []byte) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
		Body:   bytes.NewReader(content),
	}
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", p, err)
	}
	return nil
}

// PutStream buffers r; PutObject needs a seekable body to sign the payload.
func (d *S3Disk) PutStream(ctx context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage/s3: read: %w", err)
	}
	return d.Put(ctx, p, data)
}

func (d *S3Disk) Get(ctx context.Context, p string) ([]byte, error) {
	rc, err := d.GetStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *S3Disk) GetStream(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		return nil, wrapS3("get", p, err)
	}
	return out.Body, nil
}

func (d *S3Disk) Exists(ctx context.Context, p string) (bool, error) {
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err == nil {
		return true, nil
	}
	if err = wrapS3("head", p, err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (d *S3Disk) Delete(ctx context.Context, p string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(p)),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", p, err)
	}
	return nil
}

func (d *S3Disk) Files(ctx context.Context, directory string) ([]string, error) {
	prefix := d.key(directory)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var out []string
	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(d.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage/s3: list %s: %w", directory, err)
		}
		for _, obj := range page.Contents {
			out = append(out, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	return out, nil
}

func (d *S3Disk) URL(p string) string {
	return d.baseURL + "/" + d.key(p)
}

func wrapS3(op, p string, err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("storage/s3: %s %s: %w", op, p, ErrNotFound)
	}
	return fmt.Errorf("storage/s3: %s %s: %w", op, p, err)
}
