package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShoutToMe/stm-sdk-android-sub001/internal/domain"
)

// Envelope is the service's response wrapper:
//
//	{"status": "success", "message": "...", "data": {"shout": {...}}}
type Envelope struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message,omitempty"`
	Data    map[string]json.RawMessage `json:"data,omitempty"`
}

// Fetch performs the call and decodes a single T from the response.
func Fetch[T domain.Entity](ctx context.Context, d Doer, method, path string, payload any) (*T, error) {
	env, err := d.Do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return Decode[T](env)
}

// FetchList performs the call and decodes a list of T from the response.
func FetchList[T domain.Entity](ctx context.Context, d Doer, method, path string, payload any) ([]T, error) {
	env, err := d.Do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](env)
}

// Decode extracts data.<SerializationKey> as a T.
func Decode[T domain.Entity](env *Envelope) (*T, error) {
	var zero T
	key := zero.SerializationKey()
	raw, ok := lookup(env, key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return &out, nil
}

// DecodeList extracts data.<ListSerializationKey> as a []T. A JSON null list
// decodes to an empty slice.
func DecodeList[T domain.Entity](env *Envelope) ([]T, error) {
	var zero T
	key := zero.ListSerializationKey()
	if env == nil {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	raw, ok := env.Data[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	out := []T{}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return out, nil
}

func lookup(env *Envelope, key string) (json.RawMessage, bool) {
	if env == nil {
		return nil, false
	}
	raw, ok := env.Data[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}
