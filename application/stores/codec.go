// Package stores implements the persisted note and connection
// collections over the key-value adapter.
//
// Records are decoded leniently: ids that were written as numbers by
// older builds are coerced to strings, timestamps are accepted in
// RFC 3339 or epoch-millisecond form, and a record that cannot be
// decoded at all is dropped instead of poisoning the whole collection.
package stores

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexString decodes a JSON string, number or null into a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	// Numeric ids from legacy backends arrive unquoted.
	*s = flexString(string(data))
	return nil
}

// flexTime decodes an RFC 3339 string, an epoch-millisecond number or
// null into a time. Zero when absent or unreadable.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = flexTime(time.Time{})
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			*t = flexTime(time.Time{})
			return nil
		}
		*t = flexTime(parsed)
		return nil
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		*t = flexTime(time.Time{})
		return nil
	}
	*t = flexTime(time.UnixMilli(ms).UTC())
	return nil
}

func (t flexTime) Time() time.Time {
	return time.Time(t)
}

// ownerMatchSet builds the set of ids accepted as "belongs to this
// owner". The primary id always matches; aliases cover the actor's
// legacy local id.
func ownerMatchSet(ownerID string, aliases []string) map[string]bool {
	match := map[string]bool{ownerID: true}
	for _, alias := range aliases {
		if alias != "" {
			match[alias] = true
		}
	}
	return match
}
