package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// loadDefaultAWSConfig is a test seam for awsconfig.LoadDefaultConfig.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures an S3Store. BaseEndpoint and static keys are optional;
// set them for MinIO or other S3-compatible servers.
type S3Options struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Store keeps one JSON object per record.
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, newError(OpOpen, "", "", errors.New("s3 bucket is required"))
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, newError(OpOpen, "", "", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: opts.Bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, userID string, doc Document) error {
	id, err := validatePut(userID, doc)
	if err != nil {
		return err
	}

	data, found, err := s.fetch(ctx, DocumentPath(userID, id))
	if err != nil {
		return newError(OpPut, userID, id, err)
	}

	// a corrupt object is replaced rather than merged
	var current Document
	if found {
		current, _ = decode(data)
	}

	body, err := json.Marshal(merge(current, doc))
	if err != nil {
		return newError(OpPut, userID, id, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(DocumentPath(userID, id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return newError(OpPut, userID, id, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, userID, recordID string) (Document, error) {
	if err := validate(OpGet, userID); err != nil {
		return nil, err
	}
	doc, err := s.read(ctx, DocumentPath(userID, recordID))
	if err != nil {
		return nil, newError(OpGet, userID, recordID, err)
	}
	return doc, nil
}

func (s *S3Store) List(ctx context.Context, userID string) ([]Document, error) {
	if err := validate(OpList, userID); err != nil {
		return nil, err
	}

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(collectionPrefix(userID)),
	})

	docs := make([]Document, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, newError(OpList, userID, "", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			data, found, err := s.fetch(ctx, key)
			if err != nil {
				return nil, newError(OpList, userID, "", fmt.Errorf("%s: %w", key, err))
			}
			// removed between listing and reading
			if !found {
				continue
			}
			doc, err := decode(data)
			if err != nil {
				doc = undecodable(strings.TrimPrefix(key, collectionPrefix(userID)), err)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *S3Store) Delete(ctx context.Context, userID, recordID string) error {
	if err := validate(OpDelete, userID); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(DocumentPath(userID, recordID)),
	})
	if err != nil {
		return newError(OpDelete, userID, recordID, err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }

// read returns nil, nil when key does not exist.
func (s *S3Store) read(ctx context.Context, key string) (Document, error) {
	data, found, err := s.fetch(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	return decode(data)
}

// fetch returns the raw object body. found is false when the key does not
// exist.
func (s *S3Store) fetch(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
