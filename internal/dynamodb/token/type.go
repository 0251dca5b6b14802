package token

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// PageMarshaler converts DynamoDB pagination keys to and from opaque
// client tokens. Tokens are bound to the tenant that produced them so a
// token from one restaurant cannot page through another's records.
type PageMarshaler interface {
	Marshal(tenantId string, lastKey map[string]types.AttributeValue) ([]byte, error)

	Unmarshal(tenantId string, token []byte) (map[string]types.AttributeValue, error)
}
