package deeplink

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/entrhq/tabbridge/pkg/logging"
)

var (
	// ErrMalformedJSON is returned when the parameter document is not a JSON object.
	ErrMalformedJSON = errors.New("malformed parameter JSON")

	// ErrKeyNotFound is returned when the document is valid but lacks the key.
	ErrKeyNotFound = errors.New("parameter key not found")

	// ErrEmptyKey is returned when an empty key is looked up.
	ErrEmptyKey = errors.New("empty parameter key")
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("deeplink")
	if err != nil {
		// Logger fell back to stderr due to initialization failure
		debugLog.Warnf("Failed to initialize deeplink logger, using stderr fallback: %v", err)
	}
}

// SetLogger replaces the package logger. Passing nil restores a discarding logger.
func SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Discard("deeplink")
	}
	debugLog = l
}

// Param is a single key/value pair taken from a query string.
type Param struct {
	Key   string
	Value string
}

// SplitQuery splits a raw query string into pairs, preserving order.
// Entries without an '=' are dropped. Keys are kept as-is, values are
// percent-decoded with '+' read as a space; a value that fails to decode is
// kept in its raw form.
func SplitQuery(query string) []Param {
	if query == "" {
		return nil
	}

	var params []Param
	for _, pair := range strings.Split(query, "&") {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		value, err := url.QueryUnescape(raw)
		if err != nil {
			value = raw
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

// EncodeQuery converts a flat query string into a JSON object with string
// values, in the order the pairs appear. An empty query yields "{}".
//
//	EncodeQuery("text=hello%20world&priority=high")
//	// {"text":"hello world","priority":"high"}
func EncodeQuery(query string) string {
	return EncodeParams(SplitQuery(query))
}

// EncodeParams renders params as a JSON object with string values.
func EncodeParams(params []Param) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(p.Key))
		b.WriteByte(':')
		b.WriteString(quote(p.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// quote returns s as a JSON string literal without HTML escaping, so values
// such as "a&b" stay readable in logs and observer callbacks.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Lookup returns the value stored at key in a flat parameter document.
// It distinguishes a malformed document (ErrMalformedJSON) from a missing
// key (ErrKeyNotFound). Non-string values are returned in their JSON text
// form; when a key is repeated the last occurrence wins.
func Lookup(paramsJSON, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if paramsJSON == "" || !gjson.Valid(paramsJSON) {
		return "", ErrMalformedJSON
	}

	doc := gjson.Parse(paramsJSON)
	if !doc.IsObject() {
		return "", ErrMalformedJSON
	}

	// Iterate rather than use a gjson path so keys containing path syntax
	// ('.', '*', '?') are matched literally.
	var (
		value string
		found bool
	)
	doc.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			value = v.String()
			found = true
		}
		return true
	})
	if !found {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Field returns the value at key, or false if the document is malformed or
// the key is absent. Both failures are logged, at different levels.
func Field(paramsJSON, key string) (string, bool) {
	value, err := Lookup(paramsJSON, key)
	switch {
	case err == nil:
		debugLog.Debugf("Field: key=%s, value=%s", key, value)
		return value, true
	case errors.Is(err, ErrKeyNotFound):
		debugLog.Debugf("Field: key=%s not found in JSON", key)
	case errors.Is(err, ErrEmptyKey):
		debugLog.Warnf("Field: empty key")
	default:
		debugLog.Errorf("Field: failed to parse JSON: %s", paramsJSON)
	}
	return "", false
}

// Float returns the value at key parsed as a float. Parsing does not depend
// on locale. Non-numeric values yield (0, false).
func Float(paramsJSON, key string) (float64, bool) {
	s, ok := Field(paramsJSON, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		debugLog.Debugf("Float: key=%s value %q is not numeric", key, s)
		return 0, false
	}
	return f, true
}

// Int returns the value at key parsed as a base-10 32-bit integer.
// Non-numeric or out-of-range values yield (0, false).
func Int(paramsJSON, key string) (int, bool) {
	s, ok := Field(paramsJSON, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		debugLog.Debugf("Int: key=%s value %q is not an integer", key, s)
		return 0, false
	}
	return int(n), true
}

// Vec3 is a three-component vector read from x, y and z parameters.
type Vec3 struct {
	X, Y, Z float64
}

// Vector3 reads x, y and z as floats. It succeeds only if all three are
// present and numeric; partial results are not returned.
func Vector3(paramsJSON string) (Vec3, bool) {
	x, okX := Float(paramsJSON, "x")
	y, okY := Float(paramsJSON, "y")
	z, okZ := Float(paramsJSON, "z")

	if !okX || !okY || !okZ {
		debugLog.Debugf("Vector3: failed to extract all components (x=%t, y=%t, z=%t)", okX, okY, okZ)
		return Vec3{}, false
	}
	return Vec3{X: x, Y: y, Z: z}, true
}
