package jwt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// identityKeys is the precedence order for locating a user id inside
// a claims payload. The first key that resolves wins.
var identityKeys = [...]string{"user_id", "id", "uid"}

// ExtractUserID resolves the numeric user identity carried by token
// claims. Identity providers disagree on shape: some put a bare number
// under "uid", some a numeric string under "id", some nest the whole
// identity object under "user_id". All of these normalize to the same
// int64; anything else is a malformed identity.
func ExtractUserID(claims jwt.MapClaims) (int64, error) {
	id, ok := lookupIdentity(map[string]any(claims))
	if !ok {
		return 0, fmt.Errorf("claims carry no resolvable user id")
	}

	return id, nil
}

func lookupIdentity(payload map[string]any) (int64, bool) {
	for _, key := range identityKeys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		if id, ok := normalizeUserID(v); ok {
			return id, true
		}
	}

	// A single-entry map is unambiguous even under an unknown key.
	if len(payload) == 1 {
		for _, v := range payload {
			return normalizeUserID(v)
		}
	}

	return 0, false
}

func normalizeUserID(v any) (int64, bool) {
	switch value := v.(type) {
	case float64:
		// JSON numbers decode as float64. Reject fractional values,
		// an id is always integral.
		id := int64(value)
		if float64(id) != value {
			return 0, false
		}
		return id, true
	case int64:
		return value, true
	case int:
		return int64(value), true
	case json.Number:
		id, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return id, true
	case string:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case map[string]any:
		return lookupIdentity(value)
	}

	return 0, false
}
