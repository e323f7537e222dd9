package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fracdao/fractional/internal/fraction"
)

// marshalDoc converts a journal args/result map to canonical JSON TEXT
// for storage. Deterministic serialization keeps golden traces and
// replay comparisons byte-stable.
func marshalDoc(doc map[string]any) (string, error) {
	if doc == nil {
		return "{}", nil
	}
	data, err := fraction.MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}
	return string(data), nil
}

// unmarshalDoc parses journal JSON TEXT back to a map. Numbers come back
// as json.Number, never float64, so share and vault ids above 2^53
// survive the round trip; the registry's arg decoder accepts both forms.
func unmarshalDoc(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal doc: %w", err)
	}
	return doc, nil
}

// marshalItems converts an underlying item set to JSON TEXT.
func marshalItems(items []fraction.ItemID) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(data), nil
}

// unmarshalItems parses an underlying item set from JSON TEXT.
func unmarshalItems(data string) ([]fraction.ItemID, error) {
	if data == "" || data == "[]" {
		return []fraction.ItemID{}, nil
	}
	var items []fraction.ItemID
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// marshalBatches converts a burn batch list to JSON TEXT.
func marshalBatches(batches []uint64) (string, error) {
	data, err := json.Marshal(batches)
	if err != nil {
		return "", fmt.Errorf("marshal batches: %w", err)
	}
	return string(data), nil
}

// unmarshalBatches parses a burn batch list from JSON TEXT.
func unmarshalBatches(data string) ([]uint64, error) {
	if data == "" || data == "[]" {
		return []uint64{}, nil
	}
	var batches []uint64
	if err := json.Unmarshal([]byte(data), &batches); err != nil {
		return nil, fmt.Errorf("unmarshal batches: %w", err)
	}
	return batches, nil
}

// parseAmount parses a stored fixed-point decimal column.
func parseAmount(text string) (fraction.Amount, error) {
	amt, err := fraction.ParseAmount(text)
	if err != nil {
		return 0, fmt.Errorf("parse stored amount %q: %w", text, err)
	}
	return amt, nil
}
