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

package quadtree

import (
	"math"

	"github.com/phf/go-queue/queue"
)

// Cell addresses a terminal leaf on the 2^k x 2^k grid of a tree.
type Cell struct {
	Col uint32 `json:"col"`
	Row uint32 `json:"row"`
}

// Segment is a split line drawn by an internal node.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// LeafItem describes an occupied leaf.
type LeafItem struct {
	Rect  Rect  `json:"rect"`
	Label Label `json:"label"`
	Depth int   `json:"depth"`
	Cell  Cell  `json:"cell"`
}

// Layout is a flat description of the tree shape, suitable for rendering.
type Layout struct {
	Domain   Rect       `json:"domain"`
	MaxDepth int        `json:"max-depth"`
	Splits   []Segment  `json:"splits"`
	Occupied []LeafItem `json:"occupied"`
}

// Stats summarizes the tree shape.
type Stats struct {
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	Occupied int `json:"occupied"`
	Height   int `json:"height"`
}

// Locate returns the grid cell of the terminal leaf that would hold (x, y).
// It follows the same midpoint descent as Insert without touching the tree.
func (t *Tree) Locate(x, y float64) Cell {
	var cell Cell
	r := t.domain
	for i := 0; i < t.maxDepth; i++ {
		cx, cy := r.Center()
		q := Orient(cx, cy, x, y)
		cell.Col <<= 1
		cell.Row <<= 1
		if q == NE || q == SE {
			cell.Col |= 1
		}
		if q == SW || q == SE {
			cell.Row |= 1
		}
		r = r.Quadrisect(q)
	}
	return cell
}

// GridStep returns the width and height of a terminal leaf.
func (t *Tree) GridStep() (float64, float64) {
	scale := math.Ldexp(1, -t.maxDepth)
	return t.domain.Width() * scale, t.domain.Height() * scale
}

type layoutItem struct {
	node  *Node
	depth int
}

// Layout walks the tree breadth first and collects the split lines of
// every internal node together with the occupied leaves.
func (t *Tree) Layout() *Layout {
	l := &Layout{
		Domain:   t.domain,
		MaxDepth: t.maxDepth,
		Splits:   []Segment{},
		Occupied: []LeafItem{},
	}
	q := queue.New()
	q.PushBack(layoutItem{node: t.root})
	for q.Len() > 0 {
		item := q.PopFront().(layoutItem)
		n := item.node
		if n.isLeaf() {
			if n.label != EmptyLabel {
				cx, cy := n.rect.Center()
				l.Occupied = append(l.Occupied, LeafItem{
					Rect:  n.rect,
					Label: n.label,
					Depth: item.depth,
					Cell:  t.Locate(cx, cy),
				})
			}
			continue
		}
		cx, cy := n.rect.Center()
		l.Splits = append(l.Splits,
			Segment{X1: n.rect.Left, Y1: cy, X2: n.rect.Right, Y2: cy},
			Segment{X1: cx, Y1: n.rect.Top, X2: cx, Y2: n.rect.Bottom},
		)
		for _, child := range n.children {
			q.PushBack(layoutItem{node: child, depth: item.depth + 1})
		}
	}
	return l
}

// Walk visits nodes in pre-order (nw, ne, sw, se) and stops as soon as fn
// returns false.
func (t *Tree) Walk(fn func(node *Node, depth int) bool) {
	if t == nil || t.root == nil {
		return
	}
	stack := []layoutItem{{node: t.root}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(item.node, item.depth) {
			return
		}
		if item.node.isLeaf() {
			continue
		}
		for q := SE; q >= NW; q-- {
			stack = append(stack, layoutItem{node: item.node.children[q], depth: item.depth + 1})
		}
	}
}

// Stats counts nodes, leaves and occupied leaves.
func (t *Tree) Stats() Stats {
	var s Stats
	t.Walk(func(node *Node, depth int) bool {
		s.Nodes++
		if depth > s.Height {
			s.Height = depth
		}
		if node.isLeaf() {
			s.Leaves++
			if node.label != EmptyLabel {
				s.Occupied++
			}
		}
		return true
	})
	return s
}
