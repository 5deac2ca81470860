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

package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

var (
	ctlComponentName = "mxqtctl"
	dialClient       = &http.Client{
		Transport: apiutil.NewComponentSignatureRoundTripper(http.DefaultTransport, ctlComponentName),
	}
)

// apiPath joins a route under the API prefix.
func apiPath(route string) string {
	return strings.TrimPrefix(apiutil.CorePath, "/") + route
}

// doRequest sends a request to the server named by --addr and returns the
// response body. Responses other than 200 are returned as errors.
func doRequest(cmd *cobra.Command, prefix string, method string, query url.Values, body []byte) (string, error) {
	endpoint, err := getEndpoint(cmd)
	if err != nil {
		return "", err
	}
	u := endpoint + "/" + prefix
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	if method == "" {
		method = http.MethodGet
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return dial(req)
}

func dial(req *http.Request) (string, error) {
	resp, err := dialClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("[%d] %s", resp.StatusCode, content)
	}
	return string(content), nil
}

func postJSON(cmd *cobra.Command, prefix string, input map[string]interface{}) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return doRequest(cmd, prefix, http.MethodPost, nil, data)
}

func getEndpoint(cmd *cobra.Command) (string, error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return "", errors.New("get server address failed, should set flag with '-u'")
	}
	return checkURL(addr)
}

func checkURL(endpoint string) (string, error) {
	if j := strings.Index(endpoint, "//"); j == -1 {
		endpoint = "//" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Errorf("address format is wrong, should like 'http://127.0.0.1:2399' or '127.0.0.1:2399'")
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// parseFloats parses every argument as a coordinate.
func parseFloats(args []string) ([]float64, error) {
	vs := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Errorf("%q is not a number", arg)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printResponse(cmd *cobra.Command, r string, err error) {
	if err != nil {
		cmd.Printf("Failed! %s\n", err)
		return
	}
	cmd.Println(r)
}
