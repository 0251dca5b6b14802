package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lineops/lineops/internal/data"
)

const nonceSize = 12

// SealedPageMarshaler encrypts pagination keys with AES-GCM. The key is
// derived from the tenant id plus an optional deployment secret, so
// tokens are meaningless outside the tenant and deployment that issued
// them.
type SealedPageMarshaler struct {
	Secret string
}

func NewSealed(secret string) *SealedPageMarshaler {
	return &SealedPageMarshaler{
		Secret: secret,
	}
}

func (sm *SealedPageMarshaler) aead(tenantId string) (cipher.AEAD, error) {
	digest := sha256.Sum256([]byte(tenantId + ":" + sm.Secret))
	block, err := aes.NewCipher(digest[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func lastKeyToJSON(lastKey map[string]types.AttributeValue) ([]byte, error) {
	if len(lastKey) == 0 {
		return nil, nil
	}
	token := make(data.NextToken, len(lastKey))
	for field, value := range lastKey {
		entry := make(map[string]string, 1)
		switch av := value.(type) {
		case *types.AttributeValueMemberS:
			entry["S"] = av.Value
		case *types.AttributeValueMemberN:
			entry["N"] = av.Value
		case *types.AttributeValueMemberB:
			entry["B"] = string(av.Value)
		}
		token[field] = entry
	}
	return json.Marshal(token)
}

func jsonToLastKey(serialized []byte) (map[string]types.AttributeValue, error) {
	if len(serialized) == 0 {
		return nil, nil
	}
	var token data.NextToken
	if err := json.Unmarshal(serialized, &token); err != nil {
		return nil, err
	}
	lastKey := make(map[string]types.AttributeValue, len(token))
	for field, entry := range token {
		if sv, ok := entry["S"]; ok {
			lastKey[field] = &types.AttributeValueMemberS{Value: sv}
		}
		if nv, ok := entry["N"]; ok {
			lastKey[field] = &types.AttributeValueMemberN{Value: nv}
		}
		if bv, ok := entry["B"]; ok {
			lastKey[field] = &types.AttributeValueMemberB{Value: []byte(bv)}
		}
	}
	return lastKey, nil
}

func (sm *SealedPageMarshaler) Marshal(tenantId string, lastKey map[string]types.AttributeValue) ([]byte, error) {
	serialized, err := lastKeyToJSON(lastKey)
	if err != nil || serialized == nil {
		return nil, err
	}
	aead, err := sm.aead(tenantId)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nonce, nonce, serialized, nil)
	encoded := make([]byte, base64.URLEncoding.EncodedLen(len(sealed)))
	base64.URLEncoding.Encode(encoded, sealed)
	return encoded, nil
}

func (sm *SealedPageMarshaler) Unmarshal(tenantId string, token []byte) (map[string]types.AttributeValue, error) {
	if len(token) == 0 {
		return nil, nil
	}
	sealed := make([]byte, base64.URLEncoding.DecodedLen(len(token)))
	n, err := base64.URLEncoding.Decode(sealed, token)
	if err != nil {
		return nil, err
	}
	sealed = sealed[:n]
	if len(sealed) < nonceSize {
		return nil, errors.New("page token is truncated")
	}
	aead, err := sm.aead(tenantId)
	if err != nil {
		return nil, err
	}
	serialized, err := aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, err
	}
	return jsonToLastKey(serialized)
}
