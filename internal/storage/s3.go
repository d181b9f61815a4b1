package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mahirjain10/search-term-predictor/config"
	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
)

const s3Scheme = "s3"

// s3Location is the parsed form of an "s3://<region>?endpoint=<url>&presign=<duration>"
// connection string.
type s3Location struct {
	Region        string
	Endpoint      string
	PresignExpiry time.Duration
}

func parseS3ConnectionString(connectionString string) (*s3Location, error) {
	u, err := url.Parse(strings.TrimSpace(connectionString))
	if err != nil {
		return nil, err
	}
	if u.Scheme != s3Scheme {
		return nil, fmt.Errorf("unexpected scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("region is missing")
	}

	location := &s3Location{Region: u.Host}
	query := u.Query()

	if endpoint := query.Get("endpoint"); endpoint != "" {
		parsed, err := url.Parse(endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("invalid endpoint %q", endpoint)
		}
		location.Endpoint = strings.TrimRight(endpoint, "/")
	}

	if presign := query.Get("presign"); presign != "" {
		expiry, err := time.ParseDuration(presign)
		if err != nil || expiry <= 0 {
			return nil, fmt.Errorf("invalid presign duration %q", presign)
		}
		location.PresignExpiry = expiry
	}

	return location, nil
}

type S3Service struct {
	client     *s3.Client
	bucketName string
	location   *s3Location
}

// NewS3Service builds the S3 backend. The bucket is the upload container; credentials come
// from the default AWS chain.
func NewS3Service(ctx context.Context, connectionString string, bucketName string) (*S3Service, error) {
	location, err := parseS3ConnectionString(connectionString)
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrConfiguration, predictErrors.MissingConnectionStringMsg, err)
	}

	awsConfig, err := config.InitializeAws(ctx, location.Region)
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrConfiguration, "failed to initialize AWS config", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		// single attempt per PutObject
		o.Retryer = aws.NopRetryer{}
		if location.Endpoint != "" {
			o.BaseEndpoint = aws.String(location.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Service{client: client, bucketName: bucketName, location: location}, nil
}

func (service *S3Service) Upload(ctx context.Context, key string, data []byte) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:            aws.String(service.bucketName),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String(jpegContentType),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}
	if _, err := service.client.PutObject(ctx, input); err != nil {
		return "", predictErrors.Wrap(predictErrors.ErrStorage, "failed to put object "+key, err)
	}

	if service.location.PresignExpiry == 0 {
		return service.ObjectURL(key), nil
	}

	presignClient := s3.NewPresignClient(service.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(service.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(service.location.PresignExpiry))
	if err != nil {
		return "", predictErrors.Wrap(predictErrors.ErrStorage, "failed to presign url", err)
	}

	return req.URL, nil
}

// ObjectURL is the unsigned address of key: path-style against a custom endpoint,
// virtual-hosted against AWS.
func (service *S3Service) ObjectURL(key string) string {
	escaped := url.PathEscape(key)
	if service.location.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", service.location.Endpoint, service.bucketName, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", service.bucketName, service.location.Region, escaped)
}
