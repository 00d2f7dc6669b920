package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type responseAssertion func(*testing.T, *http.Response)

func withStatus(status int) responseAssertion {
	return func(t *testing.T, resp *http.Response) {
		t.Helper()
		require.Equal(t, status, resp.StatusCode)
	}
}

func sendRequest[TResp any](
	t *testing.T,
	method string,
	url string,
	req any,
	opts ...responseAssertion,
) TResp {
	t.Helper()

	var body io.Reader
	switch r := req.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(r)
	default:
		payload, err := json.Marshal(r)
		require.NoError(t, err)
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequest(method, fixture.baseURL+url, body)
	require.NoError(t, err)

	httpResp, err := fixture.client.Do(httpReq)
	require.NoError(t, err)
	defer func() {
		_ = httpResp.Body.Close()
	}()

	for _, opt := range opts {
		opt(t, httpResp)
	}

	var resp TResp

	responsePayload, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)

	if len(responsePayload) > 0 {
		require.NoError(t, json.Unmarshal(responsePayload, &resp))
	}

	return resp
}
