package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

// maxProblemBody bounds how much of an error body is read.
const maxProblemBody = 1 << 20

// Call is one JSON request relative to the client's base URL.
type Call struct {
	Method string
	Path   string
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any

	// Accept lists the statuses treated as success; empty means 200 only.
	Accept []int

	// Out receives the decoded response body on success when non-nil.
	Out any
}

// StatusError is returned by JSON for a response outside Call.Accept.
// Detail and Fields come from an RFC 7807 problem body when there is one.
type StatusError struct {
	Status int
	Detail string
	Fields map[string]string
}

func (e *StatusError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = http.StatusText(e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, detail)
}

// JSON performs call and returns the response status. A status outside
// call.Accept yields a *StatusError; transport and breaker failures are
// returned as-is with a zero status.
func (c *Client) JSON(ctx context.Context, call Call) (int, error) {
	var body io.Reader = http.NoBody
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return 0, fmt.Errorf("encoding %s %s body: %w", call.Method, call.Path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, c.baseURL+call.Path, body)
	if err != nil {
		return 0, fmt.Errorf("building %s %s: %w", call.Method, call.Path, err)
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(ctx, req)
	if resp == nil {
		return 0, fmt.Errorf("%s %s: %w", call.Method, call.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	accept := call.Accept
	if len(accept) == 0 {
		accept = []int{http.StatusOK}
	}
	if !slices.Contains(accept, resp.StatusCode) {
		return resp.StatusCode, problem(resp)
	}

	if call.Out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(call.Out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %s %s response: %w", call.Method, call.Path, err)
		}
	}
	return resp.StatusCode, nil
}

type problemBody struct {
	Detail string `json:"detail"`
	Errors []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

// problem builds a StatusError, reading an application/problem+json body
// when present. Field locations lose their "body." prefix.
func problem(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/problem+json") {
		return se
	}

	var pb problemBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProblemBody)).Decode(&pb); err != nil {
		return se
	}
	se.Detail = pb.Detail
	if len(pb.Errors) > 0 {
		se.Fields = make(map[string]string, len(pb.Errors))
		for _, e := range pb.Errors {
			se.Fields[strings.TrimPrefix(e.Location, "body.")] = e.Message
		}
	}
	return se
}
