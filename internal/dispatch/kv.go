package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Field names for the three correlated mailbox entries of spec.md §6.
const (
	FieldEmoData           = "emo_data"
	FieldSolutionToExecute = "solution_to_execute"
	FieldExecutedResults   = "executed_results"
)

// KVStore abstracts the shared key-value store of spec.md §4.4/§6:
// emo_data[UUID], solution_to_execute_dict[UUID] and
// executed_results[UUID], each written under the candidate UUID as
// the mailbox key.
type KVStore interface {
	Put(ctx context.Context, uuid, field, value string) error
	Get(ctx context.Context, uuid, field string) (value string, ok bool, err error)
	Delete(ctx context.Context, uuid, field string) error
}

// DynamoKV is the production KVStore, realizing the "shared key-value
// mailbox" design note of spec.md §9 as a single DynamoDB table keyed
// by (pk=uuid, sk=field), rather than a hand-rolled in-memory map.
type DynamoKV struct {
	Client *dynamodb.Client
	Table  string
}

// NewDynamoKV returns a DynamoKV backed by the given table, which must
// have a partition key "uuid" (S) and sort key "field" (S).
func NewDynamoKV(client *dynamodb.Client, table string) *DynamoKV {
	return &DynamoKV{Client: client, Table: table}
}

func (d *DynamoKV) Put(ctx context.Context, uuid, field, value string) error {
	_, err := d.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.Table),
		Item: map[string]types.AttributeValue{
			"uuid":  &types.AttributeValueMemberS{Value: uuid},
			"field": &types.AttributeValueMemberS{Value: field},
			"value": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("dispatch: dynamodb PutItem(%s/%s): %w", uuid, field, err)
	}
	return nil
}

func (d *DynamoKV) Get(ctx context.Context, uuid, field string) (string, bool, error) {
	out, err := d.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.Table),
		Key: map[string]types.AttributeValue{
			"uuid":  &types.AttributeValueMemberS{Value: uuid},
			"field": &types.AttributeValueMemberS{Value: field},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("dispatch: dynamodb GetItem(%s/%s): %w", uuid, field, err)
	}
	if out.Item == nil {
		return "", false, nil
	}
	v, ok := out.Item["value"].(*types.AttributeValueMemberS)
	if !ok {
		return "", false, nil
	}
	return v.Value, true, nil
}

func (d *DynamoKV) Delete(ctx context.Context, uuid, field string) error {
	_, err := d.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.Table),
		Key: map[string]types.AttributeValue{
			"uuid":  &types.AttributeValueMemberS{Value: uuid},
			"field": &types.AttributeValueMemberS{Value: field},
		},
	})
	if err != nil {
		return fmt.Errorf("dispatch: dynamodb DeleteItem(%s/%s): %w", uuid, field, err)
	}
	return nil
}
