package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"ripple_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxBatchSize is the DynamoDB BatchWriteItem limit.
const maxBatchSize = 25

// DynamoStore implements Store against a DynamoDB table.
type DynamoStore struct {
	Client *dynamodb.Client
	Table  string
}

// InitializeDynamoDBClient initializes the DynamoDB client.
func InitializeDynamoDBClient() *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// NewDynamoStore creates a store bound to the given table. An empty table
// name falls back to the default table.
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	if table == "" {
		table = models.SocialTable
	}
	return &DynamoStore{Client: client, Table: table}
}

func (ds *DynamoStore) keyAttrs(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.PK},
		"SK": &types.AttributeValueMemberS{Value: key.SK},
	}
}

// Put writes an item unconditionally.
func (ds *DynamoStore) Put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ds.Table),
		Item:      item,
	})
	if err != nil {
		return storeErr("put item", err)
	}
	return nil
}

// PutIfAbsent performs a conditional create, returning ErrItemExists when an
// item with the same key is already present.
func (ds *DynamoStore) PutIfAbsent(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(ds.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrItemExists
		}
		return storeErr("conditional put", err)
	}
	return nil
}

// Get retrieves an item, returning nil when absent.
func (ds *DynamoStore) Get(ctx context.Context, key Key) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(ds.Table),
		Key:       ds.keyAttrs(key),
	})
	if err != nil {
		return nil, storeErr("get item", err)
	}
	if output.Item == nil {
		return nil, nil
	}
	return output.Item, nil
}

// Update applies SET/REMOVE clauses and returns the new item image.
func (ds *DynamoStore) Update(ctx context.Context, key Key, set map[string]types.AttributeValue, remove []string) (map[string]types.AttributeValue, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	var setClauses []string
	i := 0
	for attr, value := range set {
		nameKey := fmt.Sprintf("#n%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = attr
		values[valueKey] = value
		setClauses = append(setClauses, nameKey+" = "+valueKey)
		i++
	}

	var removeClauses []string
	for j, attr := range remove {
		nameKey := fmt.Sprintf("#r%d", j)
		names[nameKey] = attr
		removeClauses = append(removeClauses, nameKey)
	}

	var expr string
	if len(setClauses) > 0 {
		expr = "SET " + strings.Join(setClauses, ", ")
	}
	if len(removeClauses) > 0 {
		if expr != "" {
			expr += " "
		}
		expr += "REMOVE " + strings.Join(removeClauses, ", ")
	}
	if expr == "" {
		return ds.Get(ctx, key)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(ds.Table),
		Key:                      ds.keyAttrs(key),
		UpdateExpression:         aws.String(expr),
		ExpressionAttributeNames: names,
		ReturnValues:             types.ReturnValueAllNew,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		return nil, storeErr("update item", err)
	}
	return output.Attributes, nil
}

// Add atomically adds delta to a numeric attribute.
func (ds *DynamoStore) Add(ctx context.Context, key Key, attr string, delta int) error {
	_, err := ds.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(ds.Table),
		Key:                      ds.keyAttrs(key),
		UpdateExpression:         aws.String("ADD #a :d"),
		ExpressionAttributeNames: map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
		},
	})
	if err != nil {
		return storeErr("add counter", err)
	}
	return nil
}

// DeleteIfPresent deletes the item and reports whether it existed.
func (ds *DynamoStore) DeleteIfPresent(ctx context.Context, key Key) (bool, error) {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(ds.Table),
		Key:                 ds.keyAttrs(key),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, storeErr("delete item", err)
	}
	return true, nil
}

func (ds *DynamoStore) queryInput(q Query) *dynamodb.QueryInput {
	pkName, skName := "PK", "SK"
	if q.Index != "" {
		pkName, skName = models.GSI1PK, models.GSI1SK
	}

	names := map[string]string{"#pk": pkName}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: q.Partition},
	}
	keyCondition := "#pk = :pk"
	if q.SortPrefix != "" {
		names["#sk"] = skName
		values[":skp"] = &types.AttributeValueMemberS{Value: q.SortPrefix}
		keyCondition += " AND begins_with(#sk, :skp)"
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(ds.Table),
		KeyConditionExpression:    aws.String(keyCondition),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}
	if len(q.Absent) > 0 {
		var filters []string
		for i, attr := range q.Absent {
			nameKey := fmt.Sprintf("#f%d", i)
			names[nameKey] = attr
			filters = append(filters, "attribute_not_exists("+nameKey+")")
		}
		input.FilterExpression = aws.String(strings.Join(filters, " AND "))
	}
	if len(q.StartKey) > 0 {
		input.ExclusiveStartKey = toAttributeKey(q.StartKey)
	}
	return input
}

// Query runs a key-condition read and returns one page plus the last
// evaluated key.
func (ds *DynamoStore) Query(ctx context.Context, q Query) ([]map[string]types.AttributeValue, map[string]string, error) {
	output, err := ds.Client.Query(ctx, ds.queryInput(q))
	if err != nil {
		return nil, nil, storeErr("query", err)
	}
	return output.Items, fromAttributeKey(output.LastEvaluatedKey), nil
}

// Count exhausts the query and returns the matching item count.
func (ds *DynamoStore) Count(ctx context.Context, q Query) (int, error) {
	q.Limit = 0
	q.StartKey = nil
	input := ds.queryInput(q)
	input.Select = types.SelectCount

	total := 0
	for {
		output, err := ds.Client.Query(ctx, input)
		if err != nil {
			return 0, storeErr("count query", err)
		}
		total += int(output.Count)
		if output.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	return total, nil
}

// Scan runs a substring-filtered scan, looping table pages until it has
// q.Limit matches or the table is exhausted.
func (ds *DynamoStore) Scan(ctx context.Context, q ScanQuery) ([]map[string]types.AttributeValue, map[string]string, error) {
	names := map[string]string{"#sk": "SK"}
	values := map[string]types.AttributeValue{
		":skp": &types.AttributeValueMemberS{Value: q.SortKeyPrefix},
		":q":   &types.AttributeValueMemberS{Value: q.Needle},
	}
	var contains []string
	for i, field := range q.Fields {
		nameKey := fmt.Sprintf("#f%d", i)
		names[nameKey] = field
		contains = append(contains, "contains("+nameKey+", :q)")
	}
	filter := "begins_with(#sk, :skp) AND (" + strings.Join(contains, " OR ") + ")"

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(ds.Table),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if len(q.StartKey) > 0 {
		input.ExclusiveStartKey = toAttributeKey(q.StartKey)
	}

	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Scan(ctx, input)
		if err != nil {
			return nil, nil, storeErr("scan", err)
		}
		for _, item := range output.Items {
			items = append(items, item)
			if q.Limit > 0 && int32(len(items)) >= q.Limit {
				return items, map[string]string{
					"PK": attrS(item, "PK"),
					"SK": attrS(item, "SK"),
				}, nil
			}
		}
		if output.LastEvaluatedKey == nil {
			return items, nil, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// BatchDelete removes keys in chunks of 25, looping until exhausted.
func (ds *DynamoStore) BatchDelete(ctx context.Context, keys []Key) error {
	for i := 0; i < len(keys); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		var requests []types.WriteRequest
		for _, key := range keys[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: ds.keyAttrs(key)},
			})
		}

		_, err := ds.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{ds.Table: requests},
		})
		if err != nil {
			return storeErr("batch delete", err)
		}
	}
	return nil
}

func toAttributeKey(key map[string]string) map[string]types.AttributeValue {
	attrs := make(map[string]types.AttributeValue, len(key))
	for k, v := range key {
		attrs[k] = &types.AttributeValueMemberS{Value: v}
	}
	return attrs
}

func fromAttributeKey(attrs map[string]types.AttributeValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	key := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			key[k] = s.Value
		}
	}
	return key
}
