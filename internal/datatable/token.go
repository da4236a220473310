package datatable

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidToken is returned when a state token is malformed or its
// signature does not verify.
var ErrInvalidToken = errors.New("invalid state token")

// StateCodec turns view state into a signed, URL-safe token: the msgpack
// encoding in base64 followed by a truncated HMAC-SHA256 signature. The
// token is visible to the client but cannot be altered.
type StateCodec struct {
	key []byte
}

// NewStateCodec returns a codec signing with key. Keys shorter than 32
// bytes are stretched with SHA-256.
func NewStateCodec(key []byte) *StateCodec {
	if len(key) < 32 {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return &StateCodec{key: key}
}

// Encode serializes and signs s.
func (c *StateCodec) Encode(s State) (string, error) {
	packed, err := msgpack.Marshal(&s)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(packed) + "." + c.signature(packed), nil
}

// Decode verifies and deserializes a token produced by Encode.
func (c *StateCodec) Decode(token string) (State, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return State{}, fmt.Errorf("%w: missing signature", ErrInvalidToken)
	}
	packed, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !hmac.Equal([]byte(sig), []byte(c.signature(packed))) {
		return State{}, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	var s State
	if err := msgpack.Unmarshal(packed, &s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	normalizeFilters(s.ColumnFilters)
	if s.RowSelection == nil {
		s.RowSelection = make(map[string]bool)
	}
	if s.ColumnVisibility == nil {
		s.ColumnVisibility = make(map[string]bool)
	}
	return s, nil
}

func (c *StateCodec) signature(data []byte) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}
