package api

import (
	"errors"
	"fmt"
	"strings"
)

// MessageRule tries to pull a user-facing message out of an error body.
type MessageRule func(body interface{}) (string, bool)

// DefaultMessageRules are applied in order; the first match wins.
var DefaultMessageRules = []MessageRule{
	StringBody,
	Field("detail"),
	Field("message"),
	Field("error"),
}

// StringBody matches a body that is plain text (or a JSON string).
func StringBody(body interface{}) (string, bool) {
	s, ok := body.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Field matches a JSON object whose name field is non-empty. Lists of
// strings are joined with "; ".
func Field(name string) MessageRule {
	return func(body interface{}) (string, bool) {
		obj, ok := body.(map[string]interface{})
		if !ok {
			return "", false
		}
		msg := stringify(obj[name])
		return msg, msg != ""
	}
}

func stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case bool:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func firstMatch(body interface{}, rules []MessageRule) string {
	for _, rule := range rules {
		if msg, ok := rule(body); ok {
			return msg
		}
	}
	return ""
}

// ExtractMessage returns the user-facing message for err: the first rule
// that matches the APIError body, otherwise fallback. Non-API errors always
// yield fallback. With no rules, DefaultMessageRules apply.
func ExtractMessage(err error, fallback string, rules ...MessageRule) string {
	if len(rules) == 0 {
		rules = DefaultMessageRules
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if msg := firstMatch(apiErr.Body, rules); msg != "" {
		return msg
	}
	return fallback
}
