// Package miniowr reads seed files from a MinIO (or any S3 compatible) bucket.
package miniowr

import (
	"context"
	"path"
	"strings"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rise-and-shine/tabletop/filestore"
)

var _ filestore.FileStore = (*Client)(nil)

// Client implements filestore.FileStore over one bucket.
type Client struct {
	client *minio.Client
	bucket string
	prefix string
}

// New creates a new MinIO filestore client.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// key maps a store path to its object key under the configured prefix.
func (c *Client) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if c.prefix == "" {
		return p
	}
	return path.Join(c.prefix, p)
}

// Get opens the object at p. Info.Path echoes p, not the prefixed key.
func (c *Client) Get(ctx context.Context, p string) (*filestore.File, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, c.key(p), minio.GetObjectOptions{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, errx.Wrap(c.wrapMinioError(err))
	}

	return &filestore.File{
		Content: obj,
		Info: filestore.FileInfo{
			Path:         p,
			Size:         stat.Size,
			ContentType:  contentType(p, stat.ContentType),
			LastModified: stat.LastModified,
		},
	}, nil
}

// Exists reports whether an object is stored at p.
func (c *Client) Exists(ctx context.Context, p string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, c.key(p), minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == codeNoSuchKey {
			return false, nil
		}
		return false, errx.Wrap(err)
	}
	return true, nil
}

// wrapMinioError converts MinIO errors to filestore error codes.
func (c *Client) wrapMinioError(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == codeNoSuchKey {
		return errx.New(
			"file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"bucket": c.bucket, "key": errResp.Key}),
		)
	}
	return errx.Wrap(err)
}

const (
	codeNoSuchKey = "NoSuchKey"
)

// contentType prefers the stored type unless the bucket only knows it as opaque bytes.
func contentType(path, stored string) string {
	if stored == "" || stored == filestore.ContentTypeOctetStream || stored == "binary/octet-stream" {
		return filestore.ContentTypeOf(path)
	}
	return stored
}
