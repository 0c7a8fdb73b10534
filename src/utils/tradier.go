package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseTradierResponse unwraps Tradier's {"outer":{"inner":...}} envelope. Tradier
// sends a single element list as a bare object and an empty list as null.
func ParseTradierResponse[T any](response []byte) ([]T, error) {
	header := make(map[string]json.RawMessage)

	if err := json.Unmarshal(response, &header); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal header in response: %w", err)
	}

	if len(header) != 1 {
		return nil, fmt.Errorf("ParseTradierResponse(): expected 1 key in header, got %v", len(header))
	}

	var v json.RawMessage
	for _, raw := range header {
		v = raw
	}

	if isTradierNull(v) {
		return []T{}, nil
	}

	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(v, &data); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal data in response: %w", err)
	}

	if len(data) != 1 {
		return nil, fmt.Errorf("ParseTradierResponse(): expected 1 key in data, got %v", len(data))
	}

	for _, raw := range data {
		v = raw
	}

	if isTradierNull(v) {
		return []T{}, nil
	}

	var dtos []T
	if bytes.HasPrefix(bytes.TrimSpace(v), []byte("[")) {
		if err := json.Unmarshal(v, &dtos); err != nil {
			return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal dtos in response: %w", err)
		}

		return dtos, nil
	}

	var single T
	if err := json.Unmarshal(v, &single); err != nil {
		return nil, fmt.Errorf("ParseTradierResponse(): failed to unmarshal dto in response: %w", err)
	}

	return append(dtos, single), nil
}

func isTradierNull(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	return s == "" || s == "null" || s == "\"null\""
}
