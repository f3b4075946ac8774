package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap serializes as a JSON object whose keys follow Order instead of
// encoding/json's alphabetical order.
type OrderedKVMap[T any] map[string]OrderedKV[T]

// Append stores value under key after every key already present.
// Re-appending an existing key moves it to the end.
func (om OrderedKVMap[T]) Append(key string, value T) {
	var next int64
	for _, v := range om {
		if v.Order >= next {
			next = v.Order + 1
		}
	}
	om[key] = OrderedKV[T]{Value: value, Order: next}
}

// Set replaces the value under key, keeping its position. Unknown keys are appended.
func (om OrderedKVMap[T]) Set(key string, value T) {
	existing, ok := om[key]
	if !ok {
		om.Append(key, value)
		return
	}
	om[key] = OrderedKV[T]{Value: value, Order: existing.Order}
}

func (om OrderedKVMap[T]) Get(key string) (T, bool) {
	v, ok := om[key]
	return v.Value, ok
}

func (om OrderedKVMap[T]) Keys() []string {
	pairs := om.sorted()
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.key
	}
	return keys
}

type orderedPair[T any] struct {
	key   string
	value T
	order int64
}

func (om OrderedKVMap[T]) sorted() []orderedPair[T] {
	pairs := make([]orderedPair[T], 0, len(om))
	for k, v := range om {
		pairs = append(pairs, orderedPair[T]{
			key:   k,
			value: v.Value,
			order: v.Order,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].order == pairs[j].order {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].order < pairs[j].order
	})
	return pairs
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range om.sorted() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
