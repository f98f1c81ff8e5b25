package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// failer is the slice of testing.T the helpers need.
type failer interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

// ReadJSONResponse decodes a recorded 200 response into v and fails the
// test on any other status.
func ReadJSONResponse(t failer, w *httptest.ResponseRecorder, v interface{}) {
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
		t.FailNow()
	}

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Errorf("failed to decode JSON response: %v", err)
		t.FailNow()
	}
}

// ReadErrorResponse decodes a recorded failure envelope into a generic map,
// leaving the status assertion to the caller.
func ReadErrorResponse(t failer, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Errorf("failed to decode error response: %v", err)
		t.FailNow()
	}
	return response
}

// CreateRequest builds a test request, JSON-encoding body when present.
func CreateRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}
