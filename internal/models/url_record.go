package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MaxHistory is the number of superseded URLs kept per record.
const MaxHistory = 5

// URLEntry is one signed URL together with its validity window.
// Timestamps are kept exactly as stored so that a load/save cycle
// reproduces the file byte for byte.
type URLEntry struct {
	URL        string `json:"url"`
	CreatedAt  string `json:"created_at"`
	Expiration string `json:"expiration"`
}

// Record is the current signed URL of one object plus the URLs it replaced,
// oldest first.
type Record struct {
	URLEntry
	History []URLEntry `json:"history"`
}

// Current returns the record's current URL triple.
func (r Record) Current() URLEntry {
	return r.URLEntry
}

// Records maps object keys to their records. Iteration follows insertion
// order, which is also the order used for numbered listings.
type Records struct {
	m *orderedmap.OrderedMap[string, Record]
}

func NewRecords() *Records {
	return &Records{m: orderedmap.New[string, Record]()}
}

func (r *Records) lazy() *orderedmap.OrderedMap[string, Record] {
	if r.m == nil {
		r.m = orderedmap.New[string, Record]()
	}
	return r.m
}

func (r *Records) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

func (r *Records) Get(key string) (Record, bool) {
	return r.lazy().Get(key)
}

// Set stores rec under key. An existing key keeps its position.
func (r *Records) Set(key string, rec Record) {
	if rec.History == nil {
		rec.History = []URLEntry{}
	}
	r.lazy().Set(key, rec)
}

// Delete removes key and reports whether it was present.
func (r *Records) Delete(key string) bool {
	_, present := r.lazy().Delete(key)
	return present
}

// Keys returns the keys in insertion order.
func (r *Records) Keys() []string {
	keys := make([]string, 0, r.Len())
	for pair := r.lazy().Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every record in insertion order.
func (r *Records) Each(fn func(key string, rec Record)) {
	for pair := r.lazy().Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns a copy that can be mutated independently.
func (r *Records) Clone() *Records {
	out := NewRecords()
	r.Each(func(key string, rec Record) {
		rec.History = append([]URLEntry{}, rec.History...)
		out.Set(key, rec)
	})
	return out
}

// MarshalJSON writes the records in insertion order without HTML
// escaping, so query strings of signed URLs stay readable.
func (r *Records) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	first := true
	for pair := r.lazy().Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := enc.Encode(pair.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(pair.Value); err != nil {
			return nil, fmt.Errorf("record %s: %w", pair.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of records, keeping the key order. Every
// value must itself be an object.
func (r *Records) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}

	m := orderedmap.New[string, Record]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		value := bytes.TrimSpace(pair.Value)
		if len(value) == 0 || value[0] != '{' {
			return fmt.Errorf("record %s: expected an object, got %s", pair.Key, value)
		}
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("record %s: %w", pair.Key, err)
		}
		if rec.History == nil {
			rec.History = []URLEntry{}
		}
		m.Set(pair.Key, rec)
	}
	r.m = m
	return nil
}

const timestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders t as a naive ISO-8601 timestamp, adding
// microseconds only when they are non-zero.
func FormatTimestamp(t time.Time) string {
	s := t.Format(timestampLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// ParseTimestamp accepts RFC 3339 timestamps as well as naive ISO-8601
// ones, which are interpreted in local time.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(timestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}
