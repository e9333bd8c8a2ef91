package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
loadAWSConfig resolves credentials the usual way (env vars, shared config,
instance role) and pins the region when one is configured.
*/
func loadAWSConfig(ctx context.Context, region string) (awsCfg aws.Config, e *xerr.Error) {
	var options []func(*awsconfig.LoadOptions) error
	if region != "" {
		options = append(options, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return awsCfg, xerr.NewError(err, "load AWS configuration", region)
	}
	return awsCfg, nil
}

type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// NewS3BlobStore builds the store; a non-empty endpoint switches to path-style addressing (minio, localstack).
func NewS3BlobStore(awsCfg aws.Config, bucket string, endpoint string) *S3BlobStore {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3BlobStore{client: client, bucket: bucket}
}

func (s *S3BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (e *xerr.Error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(cleanKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return xerr.NewError(err, "upload object to S3", fmt.Sprintf("s3://%s/%s", s.bucket, key))
	}
	tl.Log(tl.Debug, palette.CyanDim, "%s 's3://%s/%s' (%s bytes)", "Uploaded", s.bucket, key, len(data))
	return nil
}

func (s *S3BlobStore) Download(ctx context.Context, key string) (data []byte, e *xerr.Error) {
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, xerr.NewError(err, "object not found in S3", location)
		}
		return nil, xerr.NewError(err, "download object from S3", location)
	}
	defer output.Body.Close()

	data, err = io.ReadAll(output.Body)
	if err != nil {
		return nil, xerr.NewError(err, "read S3 object body", location)
	}
	return data, nil
}

// DynamoRecordStore maps records with their json tags, so the same structs serve every backend.
type DynamoRecordStore struct {
	client *dynamodb.Client
}

func NewDynamoRecordStore(awsCfg aws.Config, endpoint string) *DynamoRecordStore {
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &DynamoRecordStore{client: client}
}

func (s *DynamoRecordStore) Put(ctx context.Context, table string, key Key, item any) (e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return e
	}
	attributes, err := attributevalue.MarshalMapWithOptions(item, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return xerr.NewError(err, "marshal record for DynamoDB", table)
	}
	for field, value := range key {
		attributes[field] = &types.AttributeValueMemberS{Value: value}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      attributes,
	})
	if err != nil {
		return xerr.NewError(err, "put DynamoDB item", fmt.Sprintf("%s/%s", table, recordID(key)))
	}
	return nil
}

func (s *DynamoRecordStore) Get(ctx context.Context, table string, key Key, out any) (found bool, e *xerr.Error) {
	if e = key.validate(table); e != nil {
		return false, e
	}
	keyAttributes := make(map[string]types.AttributeValue, len(key))
	for field, value := range key {
		keyAttributes[field] = &types.AttributeValueMemberS{Value: value}
	}

	output, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       keyAttributes,
	})
	if err != nil {
		return false, xerr.NewError(err, "get DynamoDB item", fmt.Sprintf("%s/%s", table, recordID(key)))
	}
	if len(output.Item) == 0 {
		return false, nil
	}

	err = attributevalue.UnmarshalMapWithOptions(output.Item, out, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return false, xerr.NewError(err, "unmarshal DynamoDB item", table)
	}
	return true, nil
}
