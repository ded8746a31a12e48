package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"ehr-analysis-service/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
)

const s3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used to fetch record sources.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves a source URI to a decompressed byte stream.
//
// Plain paths are opened from the local filesystem, "s3://bucket/key" URIs
// are fetched from S3. A ".gz", ".zst" or ".lz4" suffix selects a decoder.
type Opener struct {
	logger *zap.SugaredLogger

	mu       sync.Mutex
	s3Client ObjectGetter
	newS3    func(ctx context.Context) (ObjectGetter, error)
}

// Option configures an Opener.
type Option func(*Opener)

// WithS3Client sets the client used for s3:// sources instead of one built
// from the default AWS configuration.
func WithS3Client(c ObjectGetter) Option {
	return func(o *Opener) { o.s3Client = c }
}

// NewOpener creates an Opener.
func NewOpener(logger *zap.SugaredLogger, opts ...Option) *Opener {
	o := &Opener{logger: logger, newS3: defaultS3Client}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func defaultS3Client(ctx context.Context) (ObjectGetter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// Open returns a reader over the decompressed contents of uri. The caller
// must close it. Failures are reported as *domain.IOError.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	var (
		raw io.ReadCloser
		err error
	)
	if strings.HasPrefix(uri, s3Scheme) {
		raw, err = o.openS3(ctx, uri)
	} else {
		raw, err = os.Open(uri)
	}
	if err != nil {
		return nil, domain.NewIOError(uri, "open", err)
	}

	rc, err := decode(uri, raw)
	if err != nil {
		raw.Close()
		return nil, domain.NewIOError(uri, "decode", err)
	}
	o.logger.Debugw("Opened record source", "uri", uri)
	return rc, nil
}

func (o *Opener) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := splitS3URI(uri)
	if err != nil {
		return nil, err
	}

	client, err := o.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func (o *Opener) client(ctx context.Context) (ObjectGetter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.s3Client == nil {
		c, err := o.newS3(ctx)
		if err != nil {
			return nil, err
		}
		o.s3Client = c
	}
	return o.s3Client, nil
}

func splitS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", errors.New("s3 uri must look like s3://bucket/key")
	}
	return bucket, key, nil
}

func decode(uri string, raw io.ReadCloser) (io.ReadCloser, error) {
	switch path.Ext(uri) {
	case ".gz":
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, err
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, raw}}, nil
	case ".zst":
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return nil, err
		}
		rc := zr.IOReadCloser()
		return &stackedCloser{Reader: rc, closers: []io.Closer{rc, raw}}, nil
	case ".lz4":
		return &stackedCloser{Reader: lz4.NewReader(raw), closers: []io.Closer{raw}}, nil
	default:
		return raw, nil
	}
}

// stackedCloser closes a decoder and the stream beneath it.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
