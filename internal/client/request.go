package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one outbound call. The client keeps it for the lifetime
// of the call so it can be replayed exactly after a token refresh; Body must
// therefore be a value that can be encoded twice, not a stream.
type Request struct {
	ID      string
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	Body    any
	NoCache bool
}

func NewRequest(method string, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
	}
}

func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) WithQuery(query url.Values) *Request {
	r.Query = query
	return r
}

func (r *Request) isRead() bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// cacheKey identifies a read by account, path and the full query, whether the
// query was given in Query or written into Path.
func (r *Request) cacheKey(accountID string) string {
	query := url.Values{}
	if u, err := url.Parse(r.Path); err == nil {
		for key, values := range u.Query() {
			query[key] = append(query[key], values...)
		}
	}
	for key, values := range r.Query {
		query[key] = append(query[key], values...)
	}

	key := fmt.Sprintf("%s|%s", accountID, requestPath(r.Path))
	if len(query) > 0 {
		key = key + "?" + query.Encode()
	}
	return key
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Cached is set when the body came from the response cache.
	Cached bool
	// Retried is set when this is the replay that followed a token refresh.
	Retried bool

	token string
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode > 199 && r.StatusCode < 300
}

func (r *Response) Decode(v any) error {
	if v == nil || len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
