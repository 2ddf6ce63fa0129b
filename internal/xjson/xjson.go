package xjson

import (
	gjson "github.com/goccy/go-json"
)

// Marshal/Unmarshal wrappers keep a single import site so the codec can be
// switched between encoding/json and goccy/go-json without touching callers.

func Marshal(v interface{}) ([]byte, error) {
	return gjson.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return gjson.Unmarshal(data, v)
}

// Valid reports whether data is syntactically valid JSON.
func Valid(data []byte) bool {
	return gjson.Valid(data)
}
