// Package validate provides struct-tag validation.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must be present and not blank; failing it skips the field's other rules
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	url                 valid URL (http/https)
//	alpha_dash          letters, digits, hyphens, underscores
//	numeric             any number
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N, gte=N         number > N, number >= N
//	lt=N, lte=N         number < N, number <= N
//	between=min,max     number or string length between min and max (inclusive)
//	in=a,b,c            value must be one of the listed items
//	prefix=a|b|c        string must start with one of the listed prefixes
//	regex=pattern       value must match the regex (avoid commas in pattern)
//
// Pointer fields are dereferenced; a nil pointer is an absent value.
// Every rule of a field is evaluated, so one field may report several
// violations. Results keep struct field order, then rule order.
//
// Example:
//
//	type Login struct {
//	    Username string `json:"username" validate:"required,between=3,50"`
//	    Password string `json:"password" validate:"required,min=6"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// FieldError is one violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is the ordered list of violations; empty means valid.
type Errors []FieldError

func (e Errors) Error() string { return strings.Join(e.Messages(), " ") }

// Messages returns the human-readable messages in order.
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Message
	}
	return out
}

// Has reports whether field has at least one violation.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
func Struct(v interface{}) Errors {
	return run(v, false)
}

// Partial validates only the fields that are present: nil pointer fields
// are skipped entirely, including their `required` rule.
func Partial(v interface{}) Errors {
	return run(v, true)
}

// HasErrors returns true when errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

func run(v interface{}, partial bool) Errors {
	var errs Errors
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		if value.Kind() == reflect.Ptr {
			if value.IsNil() && partial {
				continue
			}
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			msg := applyRule(rule, name, value)
			if msg == "" {
				continue
			}
			key, _, _ := strings.Cut(rule, "=")
			errs = append(errs, FieldError{Field: name, Rule: key, Message: msg})
			if key == "required" {
				break
			}
		}
	}

	return errs
}

// ─── Core dispatcher ──────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	if key == "required" {
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}

	v = indirect(v)
	if !v.IsValid() {
		// Absent optional value: only presence rules apply.
		return ""
	}
	raw := fmt.Sprintf("%v", v.Interface())

	switch key {
	// ── Format ────────────────────────────────────────────────────────
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "prefix":
		for _, p := range strings.Split(param, "|") {
			if strings.HasPrefix(raw, p) {
				return ""
			}
		}
		return fmt.Sprintf("The %s must start with one of: %s.", field, strings.ReplaceAll(param, "|", ", "))

	// ── Character class ───────────────────────────────────────────────
	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	// ── Size / range ──────────────────────────────────────────────────
	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "gt":
		if !isNumericKind(v) || toFloat(v) <= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be a number greater than %s.", field, param)
		}
	case "gte":
		if !isNumericKind(v) || toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("The %s must be a number greater than or equal to %s.", field, param)
		}
	case "lt":
		if !isNumericKind(v) || toFloat(v) >= mustParseFloat(param) {
			return fmt.Sprintf("The %s must be a number less than %s.", field, param)
		}
	case "lte":
		if !isNumericKind(v) || toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("The %s must be a number less than or equal to %s.", field, param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		l, h := mustParseFloat(lo), mustParseFloat(hi)
		if isNumericKind(v) {
			if f := toFloat(v); f < l || f > h {
				return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
			}
		} else if n := float64(len([]rune(raw))); n < l || n > h {
			return fmt.Sprintf("The %s must be between %s and %s characters.", field, lo, hi)
		}

	// ── Inclusion ─────────────────────────────────────────────────────
	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)

	// ── Pattern ───────────────────────────────────────────────────────
	case "regex":
		re, err := compile(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", field)
		}
		if !re.MatchString(raw) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var patterns sync.Map

func compile(p string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patterns.Store(p, re)
	return re, nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// isEmpty treats a set pointer as present unless it points at a blank string;
// a pointer to numeric zero is a real value.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		e := indirect(v)
		return e.Kind() == reflect.String && strings.TrimSpace(e.String()) == ""
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the validate tag by comma while keeping multi-value
// parameters (in=, between=) intact.
// e.g. "required,in=admin,user,max=100" → ["required","in=admin,user","max=100"]
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam {
				s := current.String()
				inParam = s == "in=" || s == "between="
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

var knownRules = []string{
	"required", "nullable", "email", "url", "alpha_dash", "numeric", "integer",
	"regex=", "prefix=", "min=", "max=", "gt=", "gte=", "lt=", "lte=", "in=", "between=",
}

func looksLikeNewRule(s string) bool {
	for _, k := range knownRules {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
