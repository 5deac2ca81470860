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

package server

import (
	"io"
	"math"

	"github.com/elliotchance/pie/v2"
	"github.com/phen0menon/mxquadtree/pkg/chart"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/utils/logutil"
	"github.com/phen0menon/mxquadtree/pkg/utils/syncutil"
	"github.com/phen0menon/mxquadtree/pkg/zorder"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Point is a coordinate pair on the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CellInfo addresses a terminal leaf on the grid and in z-order.
type CellInfo struct {
	Col uint32 `json:"col"`
	Row uint32 `json:"row"`
	Key uint64 `json:"key"`
}

// LeafInfo describes a leaf of the tree.
type LeafInfo struct {
	Rect   quadtree.Rect  `json:"rect"`
	Center Point          `json:"center"`
	Label  quadtree.Label `json:"label"`
	Depth  int            `json:"depth"`
	// Cell is only set for terminal leaves.
	Cell *CellInfo `json:"cell,omitempty"`
	// Point is the stored coordinate of an occupied leaf.
	Point *Point `json:"point,omitempty"`
}

// TreeStats is the shape of the tree together with label statistics.
type TreeStats struct {
	quadtree.Stats
	Domain         quadtree.Rect  `json:"domain"`
	MaxDepth       int            `json:"max-depth"`
	CellWidth      float64        `json:"cell-width"`
	CellHeight     float64        `json:"cell-height"`
	DistinctLabels int            `json:"distinct-labels"`
	MinLabel       quadtree.Label `json:"min-label"`
	MaxLabel       quadtree.Label `json:"max-label"`
	MedianLabel    quadtree.Label `json:"median-label"`
}

// Handler is a helper to export methods to handle API requests. It owns the
// tree and the z-order index and keeps them consistent under one lock.
type Handler struct {
	mu            syncutil.RWMutex
	tree          *quadtree.Tree
	index         *zorder.Index
	rejectOutside bool
	nextLabel     atomic.Int64
}

func newHandler(tree *quadtree.Tree, rejectOutside bool) *Handler {
	return &Handler{
		tree:          tree,
		index:         zorder.NewIndex(),
		rejectOutside: rejectOutside,
	}
}

// Domain returns the plane covered by the tree.
func (h *Handler) Domain() quadtree.Rect {
	return h.tree.Domain()
}

// MaxDepth returns the depth of terminal leaves.
func (h *Handler) MaxDepth() int {
	return h.tree.MaxDepth()
}

// PointCount returns the number of stored points.
func (h *Handler) PointCount() int {
	return h.index.Len()
}

// AllocLabel returns a fresh label for inserts that do not name one.
func (h *Handler) AllocLabel() quadtree.Label {
	return quadtree.Label(h.nextLabel.Inc())
}

// normalize applies the outside-plane policy to a point.
func (h *Handler) normalize(x, y float64) (float64, float64, error) {
	domain := h.tree.Domain()
	if domain.Contains(x, y) {
		return x, y, nil
	}
	if h.rejectOutside || math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, errs.ErrPointOutOfDomain.FastGenByArgs(x, y, domain)
	}
	return math.Max(domain.Left, math.Min(domain.Right, x)), math.Max(domain.Top, math.Min(domain.Bottom, y)), nil
}

// InsertPoint stores label at (x, y) and returns the terminal leaf.
func (h *Handler) InsertPoint(x, y float64, label quadtree.Label) (*LeafInfo, error) {
	x, y, err := h.normalize(x, y)
	if err != nil {
		operationCounter.WithLabelValues("insert", "rejected").Inc()
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.tree.Insert(x, y, label); err != nil {
		operationCounter.WithLabelValues("insert", "rejected").Inc()
		return nil, err
	}
	h.index.Put(zorder.NewEntry(h.tree.Locate(x, y), x, y, label))
	if int64(label) > h.nextLabel.Load() {
		h.nextLabel.Store(int64(label))
	}
	operationCounter.WithLabelValues("insert", "ok").Inc()
	log.Info("insert point", logutil.ZapRedactPoint("point", x, y), zap.Int64("label", int64(label)))
	leaf, depth := h.tree.FindLeafDepth(x, y)
	return h.leafInfo(leaf, depth), nil
}

// RemovePoint clears the leaf holding (x, y) and reports whether a point
// was stored there.
func (h *Handler) RemovePoint(x, y float64) (bool, error) {
	x, y, err := h.normalize(x, y)
	if err != nil {
		operationCounter.WithLabelValues("remove", "rejected").Inc()
		return false, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	cell := h.tree.Locate(x, y)
	if !h.tree.Remove(x, y) {
		operationCounter.WithLabelValues("remove", "miss").Inc()
		return false, nil
	}
	h.index.Delete(zorder.Encode(cell.Col, cell.Row))
	operationCounter.WithLabelValues("remove", "ok").Inc()
	log.Info("remove point", logutil.ZapRedactPoint("point", x, y))
	return true, nil
}

// GetLeaf returns the leaf reached from (x, y).
func (h *Handler) GetLeaf(x, y float64) *LeafInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	operationCounter.WithLabelValues("find-leaf", "ok").Inc()
	leaf, depth := h.tree.FindLeafDepth(x, y)
	return h.leafInfo(leaf, depth)
}

// QueryRegion returns the occupied leaves whose centers lie inside the
// rectangle, in z-order.
func (h *Handler) QueryRegion(left, top, right, bottom float64) []*LeafInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	nodes := h.tree.FindNodes(left, top, right, bottom)
	infos := make([]*LeafInfo, 0, len(nodes))
	for _, n := range nodes {
		infos = append(infos, h.leafInfo(n, h.tree.MaxDepth()))
	}
	slices.SortFunc(infos, func(a, b *LeafInfo) bool {
		return a.Cell.Key < b.Cell.Key
	})
	operationCounter.WithLabelValues("find-nodes", "ok").Inc()
	queryResultSize.Observe(float64(len(infos)))
	return infos
}

// ScanPoints pages through the stored points in z-order starting at
// startKey. A non-positive limit returns everything.
func (h *Handler) ScanPoints(startKey uint64, limit int) []*LeafInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entries := h.index.Scan(startKey, limit)
	infos := make([]*LeafInfo, 0, len(entries))
	for _, e := range entries {
		leaf, depth := h.tree.FindLeafDepth(e.X, e.Y)
		infos = append(infos, h.leafInfo(leaf, depth))
	}
	operationCounter.WithLabelValues("scan", "ok").Inc()
	queryResultSize.Observe(float64(len(infos)))
	return infos
}

// GetLayout returns the split lines and occupied leaves of the tree.
func (h *Handler) GetLayout() *quadtree.Layout {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tree.Layout()
}

// GetStats returns the tree shape and label statistics.
func (h *Handler) GetStats() *TreeStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w, ht := h.tree.GridStep()
	stats := &TreeStats{
		Stats:      h.tree.Stats(),
		Domain:     h.tree.Domain(),
		MaxDepth:   h.tree.MaxDepth(),
		CellWidth:  w,
		CellHeight: ht,
	}
	entries := h.index.Scan(0, 0)
	if len(entries) == 0 {
		stats.MinLabel, stats.MaxLabel, stats.MedianLabel = quadtree.EmptyLabel, quadtree.EmptyLabel, quadtree.EmptyLabel
		return stats
	}
	labels := make([]quadtree.Label, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
	}
	stats.DistinctLabels = len(pie.Unique(labels))
	stats.MinLabel = pie.Min(labels)
	stats.MaxLabel = pie.Max(labels)
	stats.MedianLabel = pie.Median(labels)
	return stats
}

// RenderChart writes an HTML occupancy chart of the tree to w.
func (h *Handler) RenderChart(w io.Writer) error {
	return chart.Bar3D(h.GetLayout(), w)
}

func (h *Handler) updateMetrics() {
	h.mu.RLock()
	stats := h.tree.Stats()
	h.mu.RUnlock()
	treeGauge.WithLabelValues("nodes").Set(float64(stats.Nodes))
	treeGauge.WithLabelValues("leaves").Set(float64(stats.Leaves))
	treeGauge.WithLabelValues("occupied").Set(float64(stats.Occupied))
	treeGauge.WithLabelValues("height").Set(float64(stats.Height))
	treeGauge.WithLabelValues("indexed").Set(float64(h.index.Len()))
}

func (h *Handler) leafInfo(n *quadtree.Node, depth int) *LeafInfo {
	rect := h.tree.Rect(n)
	cx, cy := rect.Center()
	info := &LeafInfo{
		Rect:   rect,
		Center: Point{X: cx, Y: cy},
		Label:  h.tree.Data(n),
		Depth:  depth,
	}
	if depth == h.tree.MaxDepth() {
		cell := h.tree.Locate(cx, cy)
		key := zorder.Encode(cell.Col, cell.Row)
		info.Cell = &CellInfo{Col: cell.Col, Row: cell.Row, Key: key}
		if e, ok := h.index.Get(key); ok && info.Label != quadtree.EmptyLabel {
			info.Point = &Point{X: e.X, Y: e.Y}
		}
	}
	return info
}
