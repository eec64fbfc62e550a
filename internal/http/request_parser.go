package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"notare/internal/core"
)

// maxBodyBytes caps what RequestBodyParser reads from a request.
const maxBodyBytes = 64 << 10

var errBodyTooLarge = errors.New("request body too large")

// ParseDate reads a yyyy-MM-dd value from key, returning fallback when the
// value is absent.
func ParseDate(values url.Values, key string, fallback core.Date) (core.Date, error) {
	v := strings.TrimSpace(values.Get(key))
	if v == "" {
		return fallback, nil
	}
	d, err := core.ParseDateKey(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// MonthParams selects the month of the mini calendar.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month. Missing or out-of-range values
// fall back to today's.
func ParseMonthParams(query url.Values, today core.Date) MonthParams {
	p := MonthParams{Year: today.Year(), Month: today.Month()}
	if y, err := strconv.Atoi(strings.TrimSpace(query.Get("year"))); err == nil && y >= core.MinYear && y <= core.MaxYear {
		p.Year = y
	}
	if m, err := strconv.Atoi(strings.TrimSpace(query.Get("month"))); err == nil && m >= 1 && m <= 12 {
		p.Month = m
	}
	return p
}

// ParseList collects every value of key. Repeated keys and comma separated
// values are both accepted; blanks are dropped.
func ParseList(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = sanitizeInput(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// RequestBodyParser reads a form-encoded or JSON body. The chat panel posts
// forms through HTMX; scripts may post {"message": "..."} instead.
type RequestBodyParser struct {
	body   []byte
	err    error
	parsed bool
	values url.Values
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	// One byte past the limit tells a full body from an oversized one.
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes the body once. JSON is detected by its first byte; string,
// number and bool fields and arrays of them become values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if !strings.HasPrefix(body, "{") {
		p.values, p.err = url.ParseQuery(body)
		return p.err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		p.err = fmt.Errorf("decode json body: %w", err)
		return p.err
	}
	p.values = url.Values{}
	for k, v := range fields {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				p.values.Add(k, stringValue(item))
			}
			continue
		}
		p.values.Set(k, stringValue(v))
	}
	return nil
}

// Get returns the sanitized first value of key.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.values.Get(key))
}

// List returns every value of key, as ParseList does for query strings.
func (p *RequestBodyParser) List(key string) []string {
	return ParseList(p.values, key)
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

// RequireMethod returns a 405 response unless the request uses one of
// methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGETOrPOST guards the panels that list on GET and write on POST.
func RequireGETOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodPost)
}

// ParseFormOrFail parses the form, answering 400 when it is malformed.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}
