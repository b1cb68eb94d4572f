package domain

import (
	"strconv"
	"strings"
	"time"
)

// Record is one row of a dashboard list: a block, transaction or transfer as
// decoded from the indexer API or the push feed. Fields stay schemaless so a
// later arrival can overlay an earlier one without losing fields the newer
// payload does not carry.
type Record map[string]any

// KeyFunc extracts the normalized primary key for a record. It returns ""
// when the record carries nothing usable as a key.
type KeyFunc func(Record) string

// NormalizeKey canonicalizes a key so that case or 0x-prefix variants of the
// same identifier collapse to one entry.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// BlockKey keys a record by its numeric height.
func BlockKey(r Record) string {
	for _, field := range []string{"height", "block_height"} {
		if n, ok := asUint(r[field]); ok {
			return strconv.FormatUint(n, 10)
		}
	}
	return ""
}

// TransactionKey keys a record by its transaction identifier.
func TransactionKey(r Record) string {
	if s, ok := r["id"].(string); ok && s != "" {
		return NormalizeKey(s)
	}
	return ""
}

// Height returns the block height the record belongs to, or 0 when absent.
func (r Record) Height() uint64 {
	for _, field := range []string{"block_height", "height"} {
		if n, ok := asUint(r[field]); ok {
			return n
		}
	}
	return 0
}

// OrderIndex returns the intra-block position of the record, or 0 when absent.
func (r Record) OrderIndex() uint64 {
	for _, field := range []string{"transaction_index", "index"} {
		if n, ok := asUint(r[field]); ok {
			return n
		}
	}
	return 0
}

// TimestampMillis returns the record timestamp in Unix milliseconds. An
// absent or unparsable timestamp is reported as 0 so ordering stays total.
func (r Record) TimestampMillis() int64 {
	switch v := r["timestamp"].(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts.UnixMilli()
		}
	case float64:
		return int64(v)
	case int64:
		return v
	case time.Time:
		return v.UnixMilli()
	}
	return 0
}

// Canonicalize rewrites the record's identifier field to its normalized
// form, so case variants of the same id present identically everywhere, not
// just in dedup.
func (r Record) Canonicalize() {
	if s, ok := r["id"].(string); ok && s != "" {
		r["id"] = NormalizeKey(s)
	}
}

// Overlay merges the fields of in into r. Incoming values win; fields absent
// from in are retained.
func (r Record) Overlay(in Record) {
	for k, v := range in {
		r[k] = v
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func asUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
