// Copyright 2023 The mxquadtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiutil

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pingcap/errcode"
	"github.com/stretchr/testify/require"
	"github.com/unrolled/render"
)

func TestJSONRespondErrorOk(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	rd := render.New(render.Options{IndentJSON: true})
	response := httptest.NewRecorder()
	body := io.NopCloser(bytes.NewBufferString(`{"x":0.4, "y":-0.4, "label":3}`))
	var input map[string]float64
	re.NoError(ReadJSONRespondError(rd, response, body, &input))
	re.Equal(0.4, input["x"])
	re.Equal(-0.4, input["y"])
	re.Equal(3., input["label"])
	result := response.Result()
	defer result.Body.Close()
	re.Equal(http.StatusOK, result.StatusCode)
}

func TestJSONRespondErrorBadInput(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	rd := render.New(render.Options{IndentJSON: true})
	response := httptest.NewRecorder()
	body := io.NopCloser(bytes.NewBufferString(`{"x":0.4}`))
	var input []float64
	err := ReadJSONRespondError(rd, response, body, &input)
	re.EqualError(err, "json: cannot unmarshal object into Go value of type []float64")
	result := response.Result()
	defer result.Body.Close()
	re.Equal(http.StatusBadRequest, result.StatusCode)
	re.NotEmpty(result.Header.Get(ErrorCodeHeader))

	response = httptest.NewRecorder()
	body = io.NopCloser(bytes.NewBufferString(`{"x":`))
	err = ReadJSONRespondError(rd, response, body, &input)
	re.EqualError(err, "unexpected end of JSON input")
	re.Equal(http.StatusBadRequest, response.Code)
}

func TestErrorResp(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	rd := render.New(render.Options{IndentJSON: true})

	response := httptest.NewRecorder()
	ErrorResp(rd, response, errcode.NewInvalidInputErr(errors.New("bad point")))
	re.Equal(http.StatusBadRequest, response.Code)

	response = httptest.NewRecorder()
	ErrorResp(rd, response, errors.New("boom"))
	re.Equal(http.StatusInternalServerError, response.Code)
	re.Contains(response.Body.String(), "boom")

	response = httptest.NewRecorder()
	ErrorResp(rd, response, nil)
	re.Equal(http.StatusInternalServerError, response.Code)
}

func TestParseQuery(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	r := httptest.NewRequest(http.MethodGet, "/leaf?x=0.25&y=abc&limit=10&bad=-1", nil)
	x, err := ParseFloatQuery(r, "x")
	re.NoError(err)
	re.Equal(0.25, x)
	_, err = ParseFloatQuery(r, "y")
	re.Error(err)
	_, err = ParseFloatQuery(r, "z")
	re.Error(err)

	limit, err := ParseUintQuery(r, "limit", 5)
	re.NoError(err)
	re.Equal(uint64(10), limit)
	limit, err = ParseUintQuery(r, "missing", 5)
	re.NoError(err)
	re.Equal(uint64(5), limit)
	_, err = ParseUintQuery(r, "bad", 5)
	re.Error(err)
}

func TestRequestSource(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	re.Equal("10.0.0.1", GetIPAddrFromHTTPRequest(r))
	r.Header.Set("X-Real-Ip", "10.0.0.2")
	re.Equal("10.0.0.2", GetIPAddrFromHTTPRequest(r))
	r.Header.Set("X-Forwarded-For", "10.0.0.3,10.0.0.4")
	re.Equal("10.0.0.3", GetIPAddrFromHTTPRequest(r))

	re.Equal("anonymous", GetComponentNameOnHTTP(r))
	var component string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		component = GetComponentNameOnHTTP(r)
	}))
	defer server.Close()
	client := &http.Client{Transport: NewComponentSignatureRoundTripper(http.DefaultTransport, "mxqt-ctl")}
	resp, err := client.Get(server.URL)
	re.NoError(err)
	resp.Body.Close()
	re.Equal("mxqt-ctl", component)
}
