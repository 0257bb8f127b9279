package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

func readResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	return respBody, nil
}

func ReadResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(resp)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected empty response body")
		}
	}

	return respBody, nil
}

func ReadOptionalResponseBody(resp *http.Response) ([]byte, error) {
	respBody, err := ReadResponseBody(resp)
	if nil != err && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return respBody, nil
}

// ErrorEnvelope is the error payload shape the Web API wraps non-2xx
// responses in.
type ErrorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// ParseErrorEnvelope decodes b as an error envelope. It returns an error
// when the body is not a JSON object carrying an "error" member.
func ParseErrorEnvelope(b []byte) (*ErrorEnvelope, error) {
	var body struct {
		Error *ErrorEnvelope `json:"error"`
	}
	if err := json.Unmarshal(b, &body); nil != err {
		return nil, fmt.Errorf("failed to decode error response body: %v", err)
	}

	if nil == body.Error {
		return nil, errors.New("response body is missing the error envelope")
	}

	return body.Error, nil
}

func IsTokenExpiredResponse(b []byte) (bool, error) {
	env, err := ParseErrorEnvelope(b)
	if nil != err {
		return false, fmt.Errorf("failed to decode 401 status code response body: %v", err)
	}

	return env.Status == http.StatusUnauthorized && env.Message == "The access token expired", nil
}

func IsTokenInvalidResponse(b []byte) (bool, error) {
	env, err := ParseErrorEnvelope(b)
	if nil != err {
		return false, fmt.Errorf("failed to decode 401 status code response body: %v", err)
	}

	return env.Status == http.StatusUnauthorized && env.Message == "Invalid access token", nil
}
