package changeset

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/model"
)

// zonelessLayout is accepted for timestamps sent without an offset; they
// are read as UTC.
const zonelessLayout = "2006-01-02T15:04:05"

// Payload is a decoded JSON object keyed by field name. A key that is
// missing is absent; a key whose raw value is the literal null is an
// explicit null.
type Payload map[string]json.RawMessage

// Decode parses a request body into a Payload. The body must be a single
// JSON object.
func Decode(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperr.BadRequestf("Invalid JSON format: empty body")
	}
	var p Payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, apperr.BadRequestf("Invalid JSON format: %v", err)
	}
	if p == nil {
		return nil, apperr.BadRequestf("Invalid JSON format: expected an object")
	}
	return p, nil
}

func (p Payload) raw(key string) (json.RawMessage, bool, bool) {
	r, ok := p[key]
	if !ok {
		return nil, false, false
	}
	return r, true, bytes.Equal(bytes.TrimSpace(r), []byte("null"))
}

func decodeField[T any](p Payload, key string, parse func(json.RawMessage) (T, error)) (Field[T], error) {
	r, present, isNull := p.raw(key)
	switch {
	case !present:
		return Field[T]{}, nil
	case isNull:
		return SetNull[T](), nil
	}
	v, err := parse(r)
	if err != nil {
		return Field[T]{}, apperr.BadRequestf("Invalid value for field '%s': %v", key, err)
	}
	return Set(v), nil
}

func decodeOptional[T any](p Payload, key string, parse func(json.RawMessage) (T, error)) (Optional[T], error) {
	r, present, isNull := p.raw(key)
	switch {
	case !present:
		return Optional[T]{}, nil
	case isNull:
		return Optional[T]{}, apperr.BadRequestf("Field '%s' cannot be null", key)
	}
	v, err := parse(r)
	if err != nil {
		return Optional[T]{}, apperr.BadRequestf("Invalid value for field '%s': %v", key, err)
	}
	return Some(v), nil
}

func parseJSON[T any](r json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(r, &v)
	return v, err
}

func parseTime(r json.RawMessage) (time.Time, error) {
	s, err := parseJSON[string](r)
	if err != nil {
		return time.Time{}, err
	}
	return ParseTimestamp(s)
}

// ParseTimestamp accepts RFC 3339 or a zone-less YYYY-MM-DDTHH:MM:SS
// timestamp. The result is UTC with sub-second precision dropped.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		var zerr error
		t, zerr = time.ParseInLocation(zonelessLayout, strings.Replace(s, " ", "T", 1), time.UTC)
		if zerr != nil {
			return time.Time{}, err
		}
	}
	return t.UTC().Truncate(time.Second), nil
}

// String decodes a non-nullable string.
func (p Payload) String(key string) (Optional[string], error) {
	return decodeOptional(p, key, parseJSON[string])
}

// NullableString decodes a nullable string.
func (p Payload) NullableString(key string) (Field[string], error) {
	return decodeField(p, key, parseJSON[string])
}

// UUID decodes a non-nullable identifier.
func (p Payload) UUID(key string) (Optional[uuid.UUID], error) {
	return decodeOptional(p, key, parseJSON[uuid.UUID])
}

// NullableUUID decodes a nullable identifier.
func (p Payload) NullableUUID(key string) (Field[uuid.UUID], error) {
	return decodeField(p, key, parseJSON[uuid.UUID])
}

// NullableDate decodes a nullable YYYY-MM-DD date.
func (p Payload) NullableDate(key string) (Field[model.Date], error) {
	return decodeField(p, key, parseJSON[model.Date])
}

// NullableInt32 decodes a nullable integer.
func (p Payload) NullableInt32(key string) (Field[int32], error) {
	return decodeField(p, key, parseJSON[int32])
}

// Bool decodes a non-nullable boolean.
func (p Payload) Bool(key string) (Optional[bool], error) {
	return decodeOptional(p, key, parseJSON[bool])
}

// Time decodes a non-nullable timestamp.
func (p Payload) Time(key string) (Optional[time.Time], error) {
	return decodeOptional(p, key, parseTime)
}

// NullableTime decodes a nullable timestamp.
func (p Payload) NullableTime(key string) (Field[time.Time], error) {
	return decodeField(p, key, parseTime)
}
