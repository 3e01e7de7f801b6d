package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentCommit is returned when another writer advanced the pointer
// first. Re-read Current and retry with the new version.
var ErrConcurrentCommit = errors.New("s3: concurrent snapshot commit detected")

// DynamoDBClient is the subset of the DynamoDB API the pointer needs.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Pointer records which snapshot blob is current for a data set, using
// DynamoDB conditional writes for the atomic advance that S3 cannot provide.
// Blob content still lives in S3; DynamoDB holds only (dataset, version,
// name) triples.
//
// Table schema: partition key "dataset" (S), sort key "version" (N).
type Pointer struct {
	client  DynamoDBClient
	table   string
	dataset string
}

// NewPointer creates a pointer for one data set.
func NewPointer(client DynamoDBClient, table, dataset string) *Pointer {
	return &Pointer{client: client, table: table, dataset: dataset}
}

// Current returns the name of the current snapshot blob and its version.
// Version 0 with an empty name means nothing was ever committed.
func (p *Pointer) Current(ctx context.Context) (string, uint64, error) {
	resp, err := p.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(p.table),
		KeyConditionExpression: aws.String("dataset = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: p.dataset},
		},
		ScanIndexForward: aws.Bool(false), // newest version first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return "", 0, fmt.Errorf("s3: querying snapshot pointer: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", 0, nil
	}

	item := resp.Items[0]
	name, version := "", uint64(0)
	if v, ok := item["name"].(*types.AttributeValueMemberS); ok {
		name = v.Value
	}
	if v, ok := item["version"].(*types.AttributeValueMemberN); ok {
		version, err = strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("s3: malformed pointer version %q: %w", v.Value, err)
		}
	}
	return name, version, nil
}

// Commit advances the pointer to name, expecting the caller observed
// expectedVersion from Current. A lost race returns ErrConcurrentCommit.
func (p *Pointer) Commit(ctx context.Context, name string, expectedVersion uint64) error {
	next := strconv.FormatUint(expectedVersion+1, 10)

	_, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.table),
		Item: map[string]types.AttributeValue{
			"dataset": &types.AttributeValueMemberS{Value: p.dataset},
			"version": &types.AttributeValueMemberN{Value: next},
			"name":    &types.AttributeValueMemberS{Value: name},
		},
		// The (dataset, version) item must not exist yet; a concurrent
		// writer claiming the same version loses here.
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("s3: committing snapshot pointer: %w", err)
	}
	return nil
}
