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
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/pingcap/errcode"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/unrolled/render"
)

const (
	// CorePath is the REST prefix of the plane API.
	CorePath = "/mxqt/api/v1"
	// ErrorCodeHeader carries the error code of a failed request.
	ErrorCodeHeader = "MXQT-Error-Code"

	// componentSignatureKey is the header naming the calling component.
	componentSignatureKey   = "component"
	componentAnonymousValue = "anonymous"
)

// DeferClose captures the error returned from closing (if an error occurs).
// This is designed to be used in a defer statement.
func DeferClose(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = errors.WithStack(cerr)
	}
}

// JSONError lets callers check for just one error type
type JSONError struct {
	Err error
}

func (e JSONError) Error() string {
	return e.Err.Error()
}

// TagJSONError wraps the JSON error to one type.
func TagJSONError(err error) error {
	switch err.(type) {
	case *json.SyntaxError, *json.UnmarshalTypeError:
		return JSONError{err}
	}
	return err
}

// ErrorResp responds to the client about the given error. Errors that are
// not an errcode.ErrorCode are reported as 500 Internal Error.
func ErrorResp(rd *render.Render, w http.ResponseWriter, err error) {
	if err == nil {
		log.Error("nil is given to errorResp")
		rd.JSON(w, http.StatusInternalServerError, "nil error")
		return
	}
	if errCode := errcode.CodeChain(err); errCode != nil {
		w.Header().Set(ErrorCodeHeader, errCode.Code().CodeStr().String())
		rd.JSON(w, errCode.Code().HTTPCode(), errcode.NewJSONFormat(errCode))
	} else {
		rd.JSON(w, http.StatusInternalServerError, err.Error())
	}
}

// GetIPAddrFromHTTPRequest returns the client IP, preferring
// `X-Forwarded-For`, then `X-Real-IP`, then `RemoteAddr`.
func GetIPAddrFromHTTPRequest(r *http.Request) string {
	ips := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	if len(strings.Trim(ips[0], " ")) > 0 {
		return ips[0]
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	return ip
}

// GetComponentNameOnHTTP returns component name from Request Header
func GetComponentNameOnHTTP(r *http.Request) string {
	componentName := r.Header.Get(componentSignatureKey)
	if len(componentName) == 0 {
		componentName = componentAnonymousValue
	}
	return componentName
}

// ComponentSignatureRoundTripper is used to add component signature in HTTP header
type ComponentSignatureRoundTripper struct {
	proxied   http.RoundTripper
	component string
}

// NewComponentSignatureRoundTripper returns a new ComponentSignatureRoundTripper.
func NewComponentSignatureRoundTripper(roundTripper http.RoundTripper, componentName string) *ComponentSignatureRoundTripper {
	return &ComponentSignatureRoundTripper{
		proxied:   roundTripper,
		component: componentName,
	}
}

// RoundTrip is used to implement RoundTripper
func (rt *ComponentSignatureRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set(componentSignatureKey, rt.component)
	return rt.proxied.RoundTrip(req)
}

// GetRouteName return mux route name registered
func GetRouteName(req *http.Request) string {
	if route := mux.CurrentRoute(req); route != nil {
		return route.GetName()
	}
	return ""
}

// PostJSON sends a POST request with a JSON body.
func PostJSON(client *http.Client, url string, data []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return client.Do(req)
}

// ParseFloatQuery reads a required float query parameter.
func ParseFloatQuery(r *http.Request, name string) (float64, error) {
	str := r.URL.Query().Get(name)
	if len(str) == 0 {
		return 0, errs.ErrInvalidArgument.FastGenByArgs(name, "missing")
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, errs.ErrInvalidArgument.FastGenByArgs(name, str)
	}
	return v, nil
}

// ParseUintQuery reads an optional unsigned query parameter, falling back
// to def when absent.
func ParseUintQuery(r *http.Request, name string, def uint64) (uint64, error) {
	str := r.URL.Query().Get(name)
	if len(str) == 0 {
		return def, nil
	}
	v, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, errs.ErrInvalidArgument.FastGenByArgs(name, str)
	}
	return v, nil
}

// ReadJSON reads a JSON data from r and then closes it.
// An error due to invalid json will be returned as a JSONError
func ReadJSON(r io.ReadCloser, data interface{}) (err error) {
	defer DeferClose(r, &err)
	b, err := io.ReadAll(r)
	if err != nil {
		return errs.ErrReadHTTPBody.Wrap(err).GenWithStackByCause()
	}
	if err = json.Unmarshal(b, data); err != nil {
		return TagJSONError(err)
	}
	return nil
}

// ReadJSONRespondError writes json into data.
// On error respond with a 400 Bad Request
func ReadJSONRespondError(rd *render.Render, w http.ResponseWriter, body io.ReadCloser, data interface{}) error {
	err := ReadJSON(body, data)
	if err == nil {
		return nil
	}
	var errCode errcode.ErrorCode
	if jsonErr, ok := errors.Cause(err).(JSONError); ok {
		errCode = errcode.NewInvalidInputErr(jsonErr.Err)
	} else {
		errCode = errcode.NewInternalErr(err)
	}
	ErrorResp(rd, w, errCode)
	return err
}
