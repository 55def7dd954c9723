package connectiondao

import "github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

// Build creates a new connections DAO using the standard table name for the
// given environment, unless tableName overrides it.
func Build(api dynamodbiface.DynamoDBAPI, env, tableName string) *DAO {
	if tableName == "" {
		tableName = TableName(env)
	}
	return New(api, tableName)
}

// TableName returns the DynamoDB table name for the given environment.
func TableName(env string) string {
	return env + "-sundae-ws--connections"
}
