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
	"math"
	"net/http"

	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/utils/apiutil"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/pingcap/errcode"
	"github.com/unrolled/render"
)

type pointHandler struct {
	svr *server.Server
	rd  *render.Render
}

func newPointHandler(svr *server.Server, rd *render.Render) *pointHandler {
	return &pointHandler{
		svr: svr,
		rd:  rd,
	}
}

// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type pointInput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Label is allocated by the server when omitted.
	Label *int64 `json:"label,omitempty"`
}

// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type pointsInfo struct {
	Count  int                `json:"count"`
	Points []*server.LeafInfo `json:"points"`
	// Next is the start key of the following page, absent on the last page.
	Next *uint64 `json:"next,omitempty"`
}

// @Summary  Insert a labelled point.
// @Accept   json
// @Param    body  body  pointInput  true  "point and optional label"
// @Produce  json
// @Success  200  {object}  server.LeafInfo
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /points [post]
func (h *pointHandler) InsertPoint(w http.ResponseWriter, r *http.Request) {
	var input pointInput
	if err := apiutil.ReadJSONRespondError(h.rd, w, r.Body, &input); err != nil {
		return
	}
	handler := h.svr.GetHandler()
	var label quadtree.Label
	if input.Label != nil {
		label = quadtree.Label(*input.Label)
	} else {
		label = handler.AllocLabel()
	}
	info, err := handler.InsertPoint(input.X, input.Y, label)
	if err != nil {
		respondTreeError(h.rd, w, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, info)
}

// @Summary  Remove the point stored in the leaf of (x, y).
// @Param    x  query  number  true  "x coordinate"
// @Param    y  query  number  true  "y coordinate"
// @Produce  json
// @Success  200  {string}  string  "The point is removed."
// @Failure  400  {string}  string  "The input is invalid."
// @Failure  404  {string}  string  "No point is stored there."
// @Router   /points [delete]
func (h *pointHandler) RemovePoint(w http.ResponseWriter, r *http.Request) {
	x, y, ok := parsePoint(h.rd, w, r)
	if !ok {
		return
	}
	removed, err := h.svr.GetHandler().RemovePoint(x, y)
	if err != nil {
		respondTreeError(h.rd, w, err)
		return
	}
	if !removed {
		h.rd.JSON(w, http.StatusNotFound, "no point is stored at "+r.URL.RawQuery)
		return
	}
	h.rd.JSON(w, http.StatusOK, "The point is removed.")
}

// @Summary  Page through the stored points in z-order.
// @Param    start  query  integer  false  "first z-order key"
// @Param    limit  query  integer  false  "page size"
// @Produce  json
// @Success  200  {object}  pointsInfo
// @Failure  400  {string}  string  "The input is invalid."
// @Router   /points [get]
func (h *pointHandler) ScanPoints(w http.ResponseWriter, r *http.Request) {
	maxLimit := uint64(h.svr.GetConfig().API.MaxScanLimit)
	start, err := apiutil.ParseUintQuery(r, "start", 0)
	if err != nil {
		apiutil.ErrorResp(h.rd, w, errcode.NewInvalidInputErr(err))
		return
	}
	limit, err := apiutil.ParseUintQuery(r, "limit", maxLimit)
	if err != nil {
		apiutil.ErrorResp(h.rd, w, errcode.NewInvalidInputErr(err))
		return
	}
	if maxLimit > 0 && (limit == 0 || limit > maxLimit) {
		limit = maxLimit
	}
	points := h.svr.GetHandler().ScanPoints(start, int(limit))
	info := &pointsInfo{Count: len(points), Points: points}
	if limit > 0 && uint64(len(points)) == limit {
		// the last cell of a depth-32 grid has the largest key, nothing follows it
		if last := points[len(points)-1].Cell.Key; last < math.MaxUint64 {
			next := last + 1
			info.Next = &next
		}
	}
	h.rd.JSON(w, http.StatusOK, info)
}

func parsePoint(rd *render.Render, w http.ResponseWriter, r *http.Request) (x, y float64, ok bool) {
	x, err := apiutil.ParseFloatQuery(r, "x")
	if err != nil {
		apiutil.ErrorResp(rd, w, errcode.NewInvalidInputErr(err))
		return 0, 0, false
	}
	y, err = apiutil.ParseFloatQuery(r, "y")
	if err != nil {
		apiutil.ErrorResp(rd, w, errcode.NewInvalidInputErr(err))
		return 0, 0, false
	}
	return x, y, true
}

// respondTreeError reports caller mistakes as 400 and everything else as 500.
func respondTreeError(rd *render.Render, w http.ResponseWriter, err error) {
	if errs.ErrPointOutOfDomain.Equal(err) || errs.ErrEmptyLabel.Equal(err) {
		apiutil.ErrorResp(rd, w, errcode.NewInvalidInputErr(err))
		return
	}
	apiutil.ErrorResp(rd, w, errcode.NewInternalErr(err))
}
