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

package api

import (
	"net/http"

	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/pingcap/errcode"
	"github.com/unrolled/render"
)

type queryHandler struct {
	svr *server.Server
	rd  *render.Render
}

func newQueryHandler(svr *server.Server, rd *render.Render) *queryHandler {
	return &queryHandler{
		svr: svr,
		rd:  rd,
	}
}

// @Summary  Get the leaf reached from (x, y).
// @Param    x  query  number  true  "x coordinate"
// @Param    y  query  number  true  "y coordinate"
// @Produce  json
// @Success  200  {object}  server.LeafInfo
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /leaf [get]
func (h *queryHandler) GetLeaf(w http.ResponseWriter, r *http.Request) {
	x, y, ok := parsePoint(h.rd, w, r)
	if !ok {
		return
	}
	h.rd.JSON(w, http.StatusOK, h.svr.GetHandler().GetLeaf(x, y))
}

// @Summary  List the occupied leaves whose centers lie in a rectangle.
// @Param    left    query  number  true  "left edge"
// @Param    top     query  number  true  "top edge"
// @Param    right   query  number  true  "right edge"
// @Param    bottom  query  number  true  "bottom edge"
// @Produce  json
// @Success  200  {array}   server.LeafInfo
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /region [get]
func (h *queryHandler) QueryRegion(w http.ResponseWriter, r *http.Request) {
	var edges [4]float64
	for i, name := range []string{"left", "top", "right", "bottom"} {
		v, err := apiutil.ParseFloatQuery(r, name)
		if err != nil {
			apiutil.ErrorResp(h.rd, w, errcode.NewInvalidInputErr(err))
			return
		}
		edges[i] = v
	}
	h.rd.JSON(w, http.StatusOK, h.svr.GetHandler().QueryRegion(edges[0], edges[1], edges[2], edges[3]))
}
