package store

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/pseudomuto/cirrus/pkg/config"
)

type (
	// S3API is the subset of the S3 client used by the S3 store.
	S3API interface {
		s3.ListObjectsV2APIClient
		GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	}

	// S3 is a Store reading from Amazon S3. Locations and paths take the form
	// s3://bucket/key.
	S3 struct {
		client S3API
	}
)

// NewS3 creates an S3 store from cfg. Static credentials are used only when
// both the access key ID and secret are set; otherwise the default AWS
// credential chain applies.
func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3FromClient(client), nil
}

// NewS3FromClient wraps an existing client.
func NewS3FromClient(client S3API) *S3 {
	return &S3{client: client}
}

// List returns the objects directly under location (one level, using "/" as
// the delimiter) in the key order S3 returns them.
func (s *S3) List(ctx context.Context, location string) ([]string, error) {
	bucket, key, err := s3Location(location)
	if err != nil {
		return nil, err
	}

	prefix := dirPrefix(key)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isS3NotFound(err) {
				return nil, errors.Wrapf(ErrNotFound, "bucket: %s", bucket)
			}
			return nil, errors.Wrapf(err, "failed to list: %s", location)
		}

		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	keys = childKeys(prefix, keys)
	paths := make([]string, len(keys))
	for i, k := range keys {
		paths[i] = SchemeS3 + "://" + bucket + "/" + k
	}

	return paths, nil
}

// Open fetches the object at path.
func (s *S3) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := s3Location(path)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "object: %s", path)
		}
		return nil, errors.Wrapf(err, "failed to get object: %s", path)
	}

	return out.Body, nil
}

func s3Location(path string) (bucket, key string, err error) {
	scheme, bucket, key := SplitURL(path)
	if scheme != SchemeS3 {
		return "", "", errors.Errorf("not an s3 location: %s", path)
	}

	if bucket == "" {
		return "", "", errors.Errorf("missing bucket in location: %s", path)
	}

	return bucket, key, nil
}

func isS3NotFound(err error) bool {
	var (
		noKey    *types.NoSuchKey
		noBucket *types.NoSuchBucket
		notFound *types.NotFound
	)

	return errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound)
}
