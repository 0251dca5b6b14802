package token_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lineops/lineops/internal/dynamodb/token"
	"github.com/stretchr/testify/assert"
)

func TestSealedPageMarshaler(t *testing.T) {
	marshaler := token.NewSealed("local-secret")
	tenantId := "acme"
	lastKey := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "acme:Orders"},
		"SK": &types.AttributeValueMemberS{Value: "abc-123"},
	}

	t.Run("RoundTrip", func(t *testing.T) {
		sealed, err := marshaler.Marshal(tenantId, lastKey)
		if err != nil {
			t.Fatalf("Failed to marshal token: %s", err)
		}
		opened, err := marshaler.Unmarshal(tenantId, sealed)
		if err != nil {
			t.Fatalf("Failed to unmarshal token: %s", err)
		}
		sk, ok := opened["SK"].(*types.AttributeValueMemberS)
		if !ok {
			t.Fatalf("SK is not a string attribute: %v", opened["SK"])
		}
		assert.Equal(t, "abc-123", sk.Value)
	})

	t.Run("EmptyKeyYieldsNilToken", func(t *testing.T) {
		sealed, err := marshaler.Marshal(tenantId, nil)
		assert.NoError(t, err)
		assert.Nil(t, sealed)

		opened, err := marshaler.Unmarshal(tenantId, nil)
		assert.NoError(t, err)
		assert.Nil(t, opened)
	})

	t.Run("WrongTenantCannotOpen", func(t *testing.T) {
		sealed, err := marshaler.Marshal(tenantId, lastKey)
		if err != nil {
			t.Fatalf("Failed to marshal token: %s", err)
		}
		_, err = marshaler.Unmarshal("burger-barn", sealed)
		assert.Error(t, err)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := marshaler.Unmarshal(tenantId, []byte("not-a-token"))
		assert.Error(t, err)
	})
}
