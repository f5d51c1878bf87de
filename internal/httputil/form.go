package httputil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// FormField is one key/value pair of an urlencoded body
type FormField struct {
	Key   string
	Value string
}

// ParseOrderedForm reads an application/x-www-form-urlencoded body and
// keeps the fields in the order they were sent. r.PostForm loses that
// order, and the menu form encodes item order only through it.
func ParseOrderedForm(w http.ResponseWriter, r *http.Request) ([]FormField, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError("read form", err)
	}
	return ParseOrderedQuery(string(body))
}

// ParseOrderedQuery splits an urlencoded string into ordered fields
func ParseOrderedQuery(query string) ([]FormField, error) {
	var fields []FormField
	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid form key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid form value for %q: %w", key, err)
		}
		fields = append(fields, FormField{Key: key, Value: value})
	}
	return fields, nil
}

// FirstValue returns the first value sent for key
func FirstValue(fields []FormField, key string) string {
	for _, f := range fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}
