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
	"bytes"
	"net/http"

	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/pingcap/errcode"
	"github.com/unrolled/render"
)

type treeHandler struct {
	svr *server.Server
	rd  *render.Render
}

func newTreeHandler(svr *server.Server, rd *render.Render) *treeHandler {
	return &treeHandler{
		svr: svr,
		rd:  rd,
	}
}

// @Summary  Get the split lines and occupied leaves of the tree.
// @Produce  json
// @Success  200  {object}  quadtree.Layout
// @Router   /tree/layout [get]
func (h *treeHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.svr.GetHandler().GetLayout())
}

// @Summary  Get the shape of the tree and label statistics.
// @Produce  json
// @Success  200  {object}  server.TreeStats
// @Router   /tree/stats [get]
func (h *treeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.svr.GetHandler().GetStats())
}

// @Summary  Get an HTML occupancy chart of the tree.
// @Produce  html
// @Success  200  {string}  string
// @Failure  500  {string}  string  "The server failed to render the chart."
// @Router   /tree/chart [get]
func (h *treeHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svr.GetHandler().RenderChart(&buf); err != nil {
		apiutil.ErrorResp(h.rd, w, errcode.NewInternalErr(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
