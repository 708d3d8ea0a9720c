package storage

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// NewDriverS3 talks to AWS by default. Setting Endpoint switches to path
// style addressing for S3 compatible stores (MinIO, R2).
func NewDriverS3(s3Config S3Config) (Driver, error) {
	options := s3.Options{
		Region: s3Config.Region,
		Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     s3Config.AccessKeyID,
				SecretAccessKey: s3Config.AccessKeySecret,
			}, nil
		}),
	}

	if s3Config.Endpoint != "" {
		options.BaseEndpoint = aws.String(s3Config.Endpoint)
		options.UsePathStyle = true
		if options.Region == "" {
			options.Region = "auto"
		}
	}

	return &driverS3{
		client: s3.New(options),
		bucket: s3Config.Bucket,
	}, nil
}

type driverS3 struct {
	client *s3.Client
	bucket string
}

func (driver *driverS3) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	result, err := driver.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(filePath),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return result.Body, nil
}

func (driver *driverS3) Put(
	ctx context.Context,
	filePath string,
	payload io.Reader,
) error {
	if _, err := driver.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(driver.bucket),
			Key:         aws.String(filePath),
			Body:        payload,
			ContentType: aws.String("application/octet-stream"),
		},
	); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Delete(ctx context.Context, filePath string) error {
	if _, err := driver.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(filePath),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) IsReady(ctx context.Context) error {
	if _, err := driver.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(driver.bucket),
	}); err != nil {
		return err
	}

	return nil
}

func (driver *driverS3) Exists(ctx context.Context, filePath string) (bool, error) {
	if _, err := driver.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(driver.bucket),
		Key:    aws.String(filePath),
	}); err != nil {
		var oe *types.NotFound
		if errors.As(err, &oe) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (driver *driverS3) List(ctx context.Context, prefix string) ([]string, error) {
	paths := []string{}

	paginator := s3.NewListObjectsV2Paginator(driver.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(driver.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, object := range page.Contents {
			paths = append(paths, aws.ToString(object.Key))
		}
	}

	slices.Sort(paths)

	return paths, nil
}
