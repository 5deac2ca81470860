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
	"math/rand"
	"testing"

	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/utils/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.LeakOptions...)
}

func newTestTree(re *require.Assertions, opts ...TreeOption) *Tree {
	tree, err := NewTree(NewRect(-1, -1, 1, 1), opts...)
	re.NoError(err)
	return tree
}

// checkShape verifies that every internal node has four children and an
// occupied descendant, and that occupied leaves sit at the maximum depth.
func checkShape(re *require.Assertions, tree *Tree) {
	var occupied func(n *Node, depth int) int
	occupied = func(n *Node, depth int) int {
		if tree.IsLeaf(n) {
			for q := NW; q <= SE; q++ {
				re.Nil(tree.Child(n, q))
			}
			if tree.Data(n) == EmptyLabel {
				return 0
			}
			re.Equal(tree.MaxDepth(), depth)
			return 1
		}
		re.Less(depth, tree.MaxDepth())
		re.Equal(EmptyLabel, tree.Data(n))
		total := 0
		for q := NW; q <= SE; q++ {
			child := tree.Child(n, q)
			re.NotNil(child)
			re.Equal(tree.Rect(n).Quadrisect(q), tree.Rect(child))
			total += occupied(child, depth+1)
		}
		re.Positive(total)
		return total
	}
	occupied(tree.Root(), 0)
}

func TestNewTree(t *testing.T) {
	re := require.New(t)
	tree, err := NewTree(Rect{Left: 1, Top: 1, Right: -1, Bottom: -1})
	re.NoError(err)
	re.Equal(NewRect(-1, -1, 1, 1), tree.Domain())
	re.Equal(DefaultMaxDepth, tree.MaxDepth())
	re.True(tree.IsEmptyLeaf(tree.Root()))
	re.Equal(tree.Domain(), tree.Rect(tree.Root()))

	_, err = NewTree(NewRect(0, 0, 0, 1))
	re.True(errs.ErrInvalidDomain.Equal(err))
	_, err = NewTree(NewRect(0, 0, math.NaN(), 1))
	re.True(errs.ErrInvalidDomain.Equal(err))
	_, err = NewTree(NewRect(0, 0, 1, 1), WithMaxDepth(0))
	re.True(errs.ErrInvalidDepth.Equal(err))
	_, err = NewTree(NewRect(0, 0, 1, 1), WithMaxDepth(MaxDepthLimit+1))
	re.True(errs.ErrInvalidDepth.Equal(err))
	_, err = NewTree(NewRect(0, 0, 1, 1), WithMaxDepth(MaxDepthLimit))
	re.NoError(err)
	_, err = NewTree(NewRect(1e308, 0, 1.7e308, 1))
	re.True(errs.ErrInvalidDomain.Equal(err))
	_, err = NewTree(NewRect(1, 0, 1+1e-15, 1), WithMaxDepth(MaxDepthLimit))
	re.True(errs.ErrInvalidDomain.Equal(err))
}

func TestInsertSinglePoint(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.NoError(tree.Insert(0.4, 0.4, 1))
	checkShape(re, tree)

	leaf, depth := tree.FindLeafDepth(0.4, 0.4)
	re.Equal(Label(1), tree.Data(leaf))
	re.Equal(3, depth)
	re.Equal(NewRect(0.25, 0.25, 0.5, 0.5), tree.Rect(leaf))

	nodes := tree.FindNodes(0, 0, 1, 1)
	re.Len(nodes, 1)
	re.Same(leaf, nodes[0])
	// corners in any order
	nodes = tree.FindNodes(1, 1, 0, 0)
	re.Len(nodes, 1)
	re.Same(leaf, nodes[0])
	re.Empty(tree.FindNodes(-1, -1, 0, 0))

	re.True(tree.Remove(0.4, 0.4))
	re.True(tree.IsEmptyLeaf(tree.Root()))
	re.Empty(tree.FindNodes(-1, -1, 1, 1))
}

func TestPartialCollapse(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.NoError(tree.Insert(0.4, 0.4, 1))
	re.NoError(tree.Insert(-0.4, -0.4, 1))
	checkShape(re, tree)
	re.Equal(Stats{Nodes: 21, Leaves: 16, Occupied: 2, Height: 3}, tree.Stats())

	re.True(tree.Remove(0.4, 0.4))
	checkShape(re, tree)
	root := tree.Root()
	re.False(tree.IsLeaf(root))
	// the south-east subtree collapsed back into a single leaf
	re.True(tree.IsEmptyLeaf(tree.Child(root, SE)))
	re.False(tree.IsLeaf(tree.Child(root, NW)))
	re.Equal(Stats{Nodes: 13, Leaves: 10, Occupied: 1, Height: 3}, tree.Stats())

	leaf := tree.FindLeaf(-0.4, -0.4)
	re.Equal(Label(1), tree.Data(leaf))
}

func TestSiblingsKeepParent(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	// same depth-2 parent, different depth-3 leaves
	re.NoError(tree.Insert(0.1, 0.1, 1))
	re.NoError(tree.Insert(0.4, 0.4, 2))
	parent := tree.FindFather(tree.FindLeaf(0.1, 0.1))
	re.Same(parent, tree.FindFather(tree.FindLeaf(0.4, 0.4)))

	re.True(tree.Remove(0.1, 0.1))
	checkShape(re, tree)
	re.False(tree.IsLeaf(parent))
	re.Same(parent, tree.FindFather(tree.FindLeaf(0.4, 0.4)))
	re.Equal(Label(2), tree.Data(tree.FindLeaf(0.4, 0.4)))
}

func TestInsertOverwrite(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.NoError(tree.Insert(0.4, 0.4, 1))
	// same terminal cell
	re.NoError(tree.Insert(0.3, 0.3, 2))
	re.Equal(Label(2), tree.Data(tree.FindLeaf(0.4, 0.4)))
	re.Equal(1, tree.Stats().Occupied)
	checkShape(re, tree)
}

func TestInsertRejects(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	err := tree.Insert(1.5, 0, 1)
	re.True(errs.ErrPointOutOfDomain.Equal(err))
	err = tree.Insert(0, math.NaN(), 1)
	re.True(errs.ErrPointOutOfDomain.Equal(err))
	err = tree.Insert(0, 0, EmptyLabel)
	re.True(errs.ErrEmptyLabel.Equal(err))
	re.True(tree.IsEmptyLeaf(tree.Root()))

	// the closed domain boundary is accepted
	re.NoError(tree.Insert(1, 1, 3))
	re.NoError(tree.Insert(-1, -1, 4))
	re.Equal(Label(3), tree.Data(tree.FindLeaf(1, 1)))
	re.Equal(Label(4), tree.Data(tree.FindLeaf(-1, -1)))
	checkShape(re, tree)
}

func TestMidpointTieBreak(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.NoError(tree.Insert(0, 0, 1))
	leaf := tree.FindLeaf(0, 0)
	re.Equal(NewRect(0, 0, 0.25, 0.25), tree.Rect(leaf))
	re.Equal(Cell{Col: 4, Row: 4}, tree.Locate(0, 0))
}

func TestRemove(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	// removing from an empty tree is a no-op
	re.False(tree.Remove(0.5, 0.5))
	re.True(tree.IsEmptyLeaf(tree.Root()))

	re.NoError(tree.Insert(0.4, 0.4, 1))
	re.NoError(tree.Insert(-0.4, 0.4, 2))
	// a point that is not stored leaves the tree untouched
	re.False(tree.Remove(0.9, -0.9))
	re.Equal(2, tree.Stats().Occupied)
	checkShape(re, tree)

	re.True(tree.Remove(0.4, 0.4))
	re.False(tree.Remove(0.4, 0.4))
	re.True(tree.Remove(-0.4, 0.4))
	re.True(tree.IsEmptyLeaf(tree.Root()))

	var nilTree *Tree
	re.False(nilTree.Remove(0, 0))
	re.Nil(nilTree.Root())
	re.Nil(nilTree.FindLeaf(0, 0))
	re.Nil(nilTree.FindNodes(0, 0, 1, 1))
}

func TestMaxDepthOne(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re, WithMaxDepth(1))
	re.NoError(tree.Insert(0.4, 0.4, 7))
	leaf, depth := tree.FindLeafDepth(0.4, 0.4)
	re.Equal(1, depth)
	re.Equal(Label(7), tree.Data(leaf))
	re.Same(tree.Child(tree.Root(), SE), leaf)
	re.Same(tree.Root(), tree.FindFather(leaf))
	checkShape(re, tree)

	re.True(tree.Remove(0.4, 0.4))
	re.True(tree.IsEmptyLeaf(tree.Root()))
}

func TestFindFather(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.Nil(tree.FindFather(tree.Root()))
	re.Nil(tree.FindFather(nil))

	re.NoError(tree.Insert(0.4, 0.4, 1))
	root := tree.Root()
	for q := NW; q <= SE; q++ {
		re.Same(root, tree.FindFather(tree.Child(root, q)))
	}
	tree.Walk(func(node *Node, _ int) bool {
		for q := NW; q <= SE; q++ {
			if child := tree.Child(node, q); child != nil {
				re.Same(node, tree.FindFather(child))
				re.Equal(q, OrientNodes(node, child))
			}
		}
		return true
	})

	other := newTestTree(re)
	re.NoError(other.Insert(0.4, 0.4, 1))
	re.Nil(tree.FindFather(other.FindLeaf(0.4, 0.4)))
}

func TestAccessors(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.False(tree.IsLeaf(nil))
	re.False(tree.IsEmptyLeaf(nil))
	re.Nil(tree.Child(nil, NW))
	re.Nil(tree.Child(tree.Root(), NW))
	re.Nil(tree.Child(tree.Root(), Quadrant(7)))
	re.Equal(EmptyLabel, tree.Data(nil))
	re.Equal(Rect{}, tree.Rect(nil))

	re.NoError(tree.Insert(0.4, 0.4, 1))
	re.False(tree.IsLeaf(tree.Root()))
	re.False(tree.IsEmptyLeaf(tree.Root()))
	re.Equal(EmptyLabel, tree.Data(tree.Root()))
	re.NotNil(tree.Child(tree.Root(), NW))
}

// findNodesBrute scans every node without pruning.
func findNodesBrute(tree *Tree, query Rect) map[*Node]struct{} {
	result := make(map[*Node]struct{})
	tree.Walk(func(node *Node, _ int) bool {
		cx, cy := tree.Rect(node).Center()
		if tree.Data(node) != EmptyLabel && query.Contains(cx, cy) {
			result[node] = struct{}{}
		}
		return true
	})
	return result
}

func TestFindNodesPruning(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(42))
	tree := newTestTree(re, WithMaxDepth(5))
	coord := func() float64 { return r.Float64()*2 - 1 }
	for i := 0; i < 200; i++ {
		re.NoError(tree.Insert(coord(), coord(), Label(i)))
	}
	checkShape(re, tree)
	for i := 0; i < 500; i++ {
		left, top, right, bottom := coord(), coord(), coord(), coord()
		expected := findNodesBrute(tree, NewRect(left, top, right, bottom))
		nodes := tree.FindNodes(left, top, right, bottom)
		re.Len(nodes, len(expected))
		for _, n := range nodes {
			re.Contains(expected, n)
		}
	}
	re.Len(tree.FindNodes(-1, -1, 1, 1), tree.Stats().Occupied)
}

func TestRandomRoundTrip(t *testing.T) {
	re := require.New(t)
	r := rand.New(rand.NewSource(7))
	tree := newTestTree(re, WithMaxDepth(6))
	type point struct{ x, y float64 }
	points := make([]point, 0, 300)
	for i := 0; i < 300; i++ {
		p := point{x: r.Float64()*2 - 1, y: r.Float64()*2 - 1}
		points = append(points, p)
		re.NoError(tree.Insert(p.x, p.y, Label(i)))
		leaf, depth := tree.FindLeafDepth(p.x, p.y)
		re.Equal(Label(i), tree.Data(leaf))
		re.Equal(6, depth)
	}
	checkShape(re, tree)

	for i, p := range points {
		tree.Remove(p.x, p.y)
		re.True(tree.IsEmptyLeaf(tree.FindLeaf(p.x, p.y)))
		if i%50 == 0 {
			checkShape(re, tree)
		}
	}
	re.True(tree.IsEmptyLeaf(tree.Root()))
	re.Equal(Stats{Nodes: 1, Leaves: 1}, tree.Stats())
}

func TestFindLeafOutsideDomain(t *testing.T) {
	re := require.New(t)
	tree := newTestTree(re)
	re.NoError(tree.Insert(0.9, 0.9, 1))
	// points beyond the domain resolve to the boundary leaf on their side
	re.Equal(Label(1), tree.Data(tree.FindLeaf(5, 5)))
	re.Same(tree.Child(tree.Root(), NW), tree.FindLeaf(-5, -5))
}
