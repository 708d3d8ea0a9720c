package hermestest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/lunagic/hermes/hermes"
	"gotest.tools/v3/assert"
)

type HTTPTestCase struct {
	Request  HTTPTestCaseRequest
	Expected HTTPTestCaseResponse
}

// HTTPTestCaseRequest describes a request. Body is encoded as JSON unless it
// is a string, which is sent as is.
type HTTPTestCaseRequest struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any
	Headers  http.Header
	Modifier func(request *http.Request)
}

func (testCase HTTPTestCaseRequest) BuildRequest(t *testing.T) *http.Request {
	t.Helper()

	var body io.Reader
	switch typedBody := testCase.Body.(type) {
	case nil:
	case string:
		body = strings.NewReader(typedBody)
	default:
		bodyBytes, err := json.Marshal(typedBody)
		assert.NilError(t, err)
		body = bytes.NewBuffer(bodyBytes)
	}

	requestURL := testCase.Path
	if len(testCase.Query) > 0 {
		requestURL += "?" + testCase.Query.Encode()
	}

	request := httptest.NewRequest(
		testCase.Method,
		requestURL,
		body,
	)

	if testCase.Headers != nil {
		request.Header = testCase.Headers
	}

	if testCase.Modifier != nil {
		testCase.Modifier(request)
	}

	return request
}

// HTTPTestCaseResponse is compared against the recorded response. A string
// Body is compared verbatim, anything else as JSON. Only the listed Headers
// are checked.
type HTTPTestCaseResponse struct {
	Status  int
	Headers http.Header
	Body    any
}

// TestRequest runs testCase against app and returns the recorder for any
// further assertions.
func TestRequest(t *testing.T, app *hermes.App, testCase HTTPTestCase) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()

	// Execute the request
	{
		app.Handler().ServeHTTP(
			recorder,
			testCase.Request.BuildRequest(t),
		)
	}

	// Assert status code
	{
		assert.Equal(t, testCase.Expected.Status, recorder.Code, recorder.Body.String())
	}

	// Assert headers
	{
		for key := range testCase.Expected.Headers {
			assert.Equal(t, testCase.Expected.Headers.Get(key), recorder.Header().Get(key))
		}
	}

	// Assert body
	{
		responseBody := strings.TrimSpace(recorder.Body.String())
		expectedBody := ""
		switch typedBody := testCase.Expected.Body.(type) {
		case nil:
			return recorder
		case string:
			expectedBody = typedBody
		default:
			jsonBytes, err := json.Marshal(typedBody)
			assert.NilError(t, err)
			expectedBody = string(jsonBytes)
		}

		assert.Equal(t, expectedBody, responseBody)
	}

	return recorder
}

// DecodeJSON decodes the recorded body into T.
func DecodeJSON[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	target := *new(T)
	assert.NilError(t, json.Unmarshal(recorder.Body.Bytes(), &target))

	return target
}
