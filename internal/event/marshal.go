package event

import (
	"encoding/json"
	"fmt"
)

// Marshal converts event details to JSON text for storage.
func Marshal(d Details) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal event details: %w", err)
	}
	return string(data), nil
}

// Unmarshal parses stored JSON text back into event details.
func Unmarshal(data string) (Details, error) {
	var d Details
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return Details{}, fmt.Errorf("unmarshal event details: %w", err)
	}
	return d, nil
}
