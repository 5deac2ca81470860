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
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	// DefaultMaxDepth is the number of subdivisions used when no option is given.
	DefaultMaxDepth = 3
	// MaxDepthLimit bounds the depth so that grid cells fit in 32-bit columns/rows.
	MaxDepthLimit = 32
)

// Label is the data stored in a leaf.
type Label int64

// EmptyLabel marks a leaf that holds no point.
const EmptyLabel Label = -1

// Node is a quadtree node. A node either has all four children or none.
type Node struct {
	rect     Rect
	label    Label
	children [4]*Node
}

func newNode(rect Rect) *Node {
	return &Node{rect: rect, label: EmptyLabel}
}

func (n *Node) isLeaf() bool {
	return n.children[NW] == nil
}

// Tree is an MX region quadtree over a fixed rectangular domain. Every
// stored point lives in a leaf exactly maxDepth subdivisions below the root.
//
// Tree is not safe for concurrent use.
type Tree struct {
	domain   Rect
	maxDepth int
	root     *Node
}

// TreeOption configures a Tree.
type TreeOption func(t *Tree)

// WithMaxDepth sets the number of subdivisions between the root and a
// terminal leaf.
func WithMaxDepth(depth int) TreeOption {
	return func(t *Tree) { t.maxDepth = depth }
}

// NewTree creates an empty tree covering domain. The domain corners may be
// given in any order.
func NewTree(domain Rect, opts ...TreeOption) (*Tree, error) {
	t := &Tree{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(t)
	}
	domain = domain.Normalize()
	if !domain.IsValid() {
		return nil, errs.ErrInvalidDomain.FastGenByArgs(domain)
	}
	if t.maxDepth < 1 || t.maxDepth > MaxDepthLimit {
		return nil, errs.ErrInvalidDepth.FastGenByArgs(t.maxDepth, MaxDepthLimit)
	}
	if !domain.Resolves(t.maxDepth) {
		return nil, errs.ErrInvalidDomain.FastGenByArgs(domain)
	}
	t.domain = domain
	t.root = newNode(domain)
	return t, nil
}

// Domain returns the normalized domain of the tree.
func (t *Tree) Domain() Rect {
	return t.domain
}

// MaxDepth returns the depth of terminal leaves.
func (t *Tree) MaxDepth() int {
	return t.maxDepth
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// IsLeaf reports whether node has no children. A nil node is not a leaf.
func (t *Tree) IsLeaf(node *Node) bool {
	return node != nil && node.isLeaf()
}

// IsEmptyLeaf reports whether node is a leaf holding EmptyLabel.
func (t *Tree) IsEmptyLeaf(node *Node) bool {
	return t.IsLeaf(node) && node.label == EmptyLabel
}

// Child returns the child of node in quadrant q, or nil for leaves.
func (t *Tree) Child(node *Node, q Quadrant) *Node {
	if node == nil || q < NW || q > SE {
		return nil
	}
	return node.children[q]
}

// Data returns the label stored in node. Internal nodes and nil hold EmptyLabel.
func (t *Tree) Data(node *Node) Label {
	if node == nil {
		return EmptyLabel
	}
	return node.label
}

// Rect returns the rectangle covered by node.
func (t *Tree) Rect(node *Node) Rect {
	if node == nil {
		return Rect{}
	}
	return node.rect
}

// FindLeaf descends from the root by orientation against each node center
// and returns the leaf reached. Points outside the domain still resolve to
// the boundary leaf on their side.
func (t *Tree) FindLeaf(x, y float64) *Node {
	leaf, _ := t.FindLeafDepth(x, y)
	return leaf
}

// FindLeafDepth is FindLeaf that also reports the number of descents taken.
func (t *Tree) FindLeafDepth(x, y float64) (*Node, int) {
	if t == nil || t.root == nil {
		return nil, 0
	}
	cur, depth := t.root, 0
	for !cur.isLeaf() {
		cx, cy := cur.rect.Center()
		cur = cur.children[Orient(cx, cy, x, y)]
		depth++
	}
	return cur, depth
}

// FindNodes returns every node whose center lies inside the closed query
// rectangle and whose label is not EmptyLabel. The corners may be given in
// any order. Subtrees that cannot intersect the query are pruned.
func (t *Tree) FindNodes(left, top, right, bottom float64) []*Node {
	if t == nil || t.root == nil {
		return nil
	}
	query := NewRect(left, top, right, bottom)
	var result []*Node
	stack := []*Node{t.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := node.rect.Center()
		if node.label != EmptyLabel && query.Contains(cx, cy) {
			result = append(result, node)
		}
		if node.isLeaf() {
			continue
		}
		// A query entirely west of the center cannot reach the east children,
		// and likewise for the other three sides.
		if !(query.Right < cx) {
			if !(query.Bottom < cy) {
				stack = append(stack, node.children[SE])
			}
			if !(query.Top > cy) {
				stack = append(stack, node.children[NE])
			}
		}
		if !(query.Left > cx) {
			if !(query.Bottom < cy) {
				stack = append(stack, node.children[SW])
			}
			if !(query.Top > cy) {
				stack = append(stack, node.children[NW])
			}
		}
	}
	return result
}

// FindFather returns the parent of node, or nil when node is the root or is
// not reachable in this tree.
func (t *Tree) FindFather(node *Node) *Node {
	if t == nil || t.root == nil || node == nil {
		return nil
	}
	var prev *Node
	cur := t.root
	for cur != node {
		if cur.isLeaf() {
			return nil
		}
		prev = cur
		cur = cur.children[OrientNodes(cur, node)]
	}
	return prev
}

// Insert stores label in the terminal leaf containing (x, y), subdividing
// along the path as needed. An existing label in that leaf is overwritten.
func (t *Tree) Insert(x, y float64, label Label) error {
	if label == EmptyLabel {
		return errs.ErrEmptyLabel.FastGenByArgs(EmptyLabel)
	}
	if !t.domain.Contains(x, y) {
		return errs.ErrPointOutOfDomain.FastGenByArgs(x, y, t.domain)
	}
	cur := t.root
	for depth := 0; depth < t.maxDepth; depth++ {
		if cur.isLeaf() {
			t.cut(cur, depth)
		}
		cx, cy := cur.rect.Center()
		cur = cur.children[Orient(cx, cy, x, y)]
	}
	cur.label = label
	return nil
}

// Remove clears the leaf containing (x, y) and collapses every ancestor
// whose four children have all become empty leaves. It reports whether a
// label was actually cleared.
func (t *Tree) Remove(x, y float64) bool {
	node := t.FindLeaf(x, y)
	if node == nil {
		return false
	}
	cleared := node.label != EmptyLabel
	node.label = EmptyLabel
	for {
		parent := t.FindFather(node)
		if parent == nil || !t.collapse(parent) {
			return cleared
		}
		node = parent
	}
}

func (t *Tree) cut(node *Node, depth int) {
	for q := NW; q <= SE; q++ {
		node.children[q] = newNode(node.rect.Quadrisect(q))
	}
	log.Debug("cut quadtree leaf", zap.Int("depth", depth), zap.Stringer("rect", node.rect))
}

// collapse drops the children of node when all of them are empty leaves.
func (t *Tree) collapse(node *Node) bool {
	for _, child := range node.children {
		if child == nil || !child.isLeaf() || child.label != EmptyLabel {
			return false
		}
	}
	node.children = [4]*Node{}
	node.label = EmptyLabel
	log.Debug("collapse quadtree node", zap.Stringer("rect", node.rect))
	return true
}
