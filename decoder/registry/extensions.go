package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Extensions is an extension map kept in document order. Values are either
// strings or nested objects, up to the registry's two levels of nesting.
type Extensions []ExtensionEntry

// ExtensionEntry is one key of an extension map. Exactly one of Value and
// Children is meaningful, as told by IsObject.
type ExtensionEntry struct {
	Key      string
	Value    string
	IsObject bool
	Children Extensions
}

// Get returns the entry for key
func (e Extensions) Get(key string) (ExtensionEntry, bool) {
	for _, entry := range e {
		if entry.Key == key {
			return entry, true
		}
	}
	return ExtensionEntry{}, false
}

// Keys returns the keys in document order
func (e Extensions) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, entry := range e {
		keys = append(keys, entry.Key)
	}
	return keys
}

// String returns the string value stored under key
func (e Extensions) String(key string) (string, bool) {
	entry, ok := e.Get(key)
	if !ok || entry.IsObject {
		return "", false
	}
	return entry.Value, true
}

// UnmarshalJSON decodes an object preserving key order
func (e *Extensions) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed extensions", ErrInvalidRegistry)
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*e = nil
		return nil
	}
	*e = parseExtensions(result)
	return nil
}

// parseExtensions keeps string and object values. Anything else, including
// a non-object extensions value, is dropped.
func parseExtensions(obj gjson.Result) Extensions {
	if !obj.IsObject() {
		return nil
	}
	var entries Extensions
	obj.ForEach(func(key, value gjson.Result) bool {
		entry := ExtensionEntry{Key: key.String()}
		switch {
		case value.IsObject():
			entry.IsObject = true
			entry.Children = parseExtensions(value)
		case value.Type == gjson.String:
			entry.Value = value.String()
		default:
			return true
		}
		entries = append(entries, entry)
		return true
	})
	if entries == nil {
		entries = Extensions{}
	}
	return entries
}

// MarshalJSON encodes the entries as an object in their original order
func (e Extensions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var value []byte
		if entry.IsObject {
			value, err = entry.Children.MarshalJSON()
		} else {
			value, err = json.Marshal(entry.Value)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
