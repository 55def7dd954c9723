package connectiondao

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// mockDynamoDB keeps connection items in memory, keyed by PK and SK. Queries
// match on the single key attribute in the key condition, PK or GSI1PK.
type mockDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	mu         sync.Mutex
	items      map[string]Connection
	failPut    map[string]error // by PK
	failDelete map[string]error // by PK
	puts       []*dynamodb.PutItemInput
	queries    []*dynamodb.QueryInput
	deletes    []*dynamodb.DeleteItemInput
}

func newMockDynamoDB() *mockDynamoDB {
	return &mockDynamoDB{
		items:      map[string]Connection{},
		failPut:    map[string]error{},
		failDelete: map[string]error{},
	}
}

func itemKey(pk, sk string) string {
	return pk + "|" + sk
}

func stringValue(av *dynamodb.AttributeValue) string {
	if av == nil {
		return ""
	}
	return aws.StringValue(av.S)
}

func (m *mockDynamoDB) PutItemWithContext(_ aws.Context, input *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	var conn Connection
	if err := dynamodbattribute.UnmarshalMap(input.Item, &conn); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.puts = append(m.puts, input)
	if err := m.failPut[conn.PK]; err != nil {
		return nil, err
	}
	m.items[itemKey(conn.PK, conn.SK)] = conn
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamoDB) QueryWithContext(_ aws.Context, input *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, input)

	var attribute, value string
	for _, name := range input.ExpressionAttributeNames {
		attribute = aws.StringValue(name)
	}
	for _, av := range input.ExpressionAttributeValues {
		value = stringValue(av)
	}

	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var items []map[string]*dynamodb.AttributeValue
	for _, key := range keys {
		conn := m.items[key]

		var got string
		switch attribute {
		case "PK":
			got = conn.PK
		case "GSI1PK":
			got = conn.GSI1PK
		default:
			return nil, fmt.Errorf("unexpected key attribute %q", attribute)
		}
		if got != value {
			continue
		}

		item, err := dynamodbattribute.MarshalMap(conn)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDynamoDB) DeleteItemWithContext(_ aws.Context, input *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	pk, sk := stringValue(input.Key["PK"]), stringValue(input.Key["SK"])

	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, input)
	if err := m.failDelete[pk]; err != nil {
		return nil, err
	}
	delete(m.items, itemKey(pk, sk))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDynamoDB) connections() []Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	var conns []Connection
	for _, conn := range m.items {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool {
		return itemKey(conns[i].PK, conns[i].SK) < itemKey(conns[j].PK, conns[j].SK)
	})
	return conns
}
