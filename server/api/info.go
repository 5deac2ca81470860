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

	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/versioninfo"
	"github.com/phen0menon/mxquadtree/server"
	"github.com/unrolled/render"
)

// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type version struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Hash      string `json:"hash"`
	Branch    string `json:"branch"`
}

// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type status struct {
	Name           string        `json:"name"`
	Version        string        `json:"version"`
	GitHash        string        `json:"git_hash"`
	StartTimestamp int64         `json:"start_timestamp"`
	Plane          quadtree.Rect `json:"plane"`
	MaxDepth       int           `json:"max_depth"`
	Points         int           `json:"points"`
}

// infoHandler serves the read-only facts about the running server.
type infoHandler struct {
	svr *server.Server
	rd  *render.Render
}

func newInfoHandler(svr *server.Server, rd *render.Render) *infoHandler {
	return &infoHandler{
		svr: svr,
		rd:  rd,
	}
}

// @Summary  Get the version of the server.
// @Produce  json
// @Success  200  {object}  version
// @Router   /version [get]
func (h *infoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, &version{
		Version:   versioninfo.ReleaseVersion,
		BuildTime: versioninfo.BuildTS,
		Hash:      versioninfo.GitHash,
		Branch:    versioninfo.GitBranch,
	})
}

// @Summary  Get the plane served and the number of stored points.
// @Produce  json
// @Success  200  {object}  status
// @Router   /status [get]
func (h *infoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	handler := h.svr.GetHandler()
	h.rd.JSON(w, http.StatusOK, &status{
		Name:           h.svr.Name(),
		Version:        versioninfo.ReleaseVersion,
		GitHash:        versioninfo.GitHash,
		StartTimestamp: h.svr.StartTimestamp(),
		Plane:          handler.Domain(),
		MaxDepth:       handler.MaxDepth(),
		Points:         handler.PointCount(),
	})
}

// @Summary  Get the effective config of the server.
// @Produce  json
// @Success  200  {object}  config.Config
// @Router   /config [get]
func (h *infoHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.svr.GetConfig())
}

// @Summary  Get the plane section of the config.
// @Produce  json
// @Success  200  {object}  config.PlaneConfig
// @Router   /config/plane [get]
func (h *infoHandler) GetPlaneConfig(w http.ResponseWriter, r *http.Request) {
	h.rd.JSON(w, http.StatusOK, h.svr.GetConfig().Plane)
}
