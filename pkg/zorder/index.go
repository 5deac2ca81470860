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

package zorder

import (
	"github.com/google/btree"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/phen0menon/mxquadtree/pkg/utils/syncutil"
)

const defaultBTreeDegree = 32

// Entry is a stored point keyed by the Morton key of its grid cell.
type Entry struct {
	Key   uint64         `json:"key"`
	Col   uint32         `json:"col"`
	Row   uint32         `json:"row"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
	Label quadtree.Label `json:"label"`
}

// NewEntry builds the entry of a point stored in cell.
func NewEntry(cell quadtree.Cell, x, y float64, label quadtree.Label) Entry {
	return Entry{
		Key:   Encode(cell.Col, cell.Row),
		Col:   cell.Col,
		Row:   cell.Row,
		X:     x,
		Y:     y,
		Label: label,
	}
}

// Index keeps one entry per occupied cell ordered by Morton key.
type Index struct {
	syncutil.RWMutex
	tree *btree.BTreeG[Entry]
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		tree: btree.NewG(defaultBTreeDegree, func(i, j Entry) bool {
			return i.Key < j.Key
		}),
	}
}

// Put stores e, replacing any entry of the same cell.
func (idx *Index) Put(e Entry) {
	idx.Lock()
	defer idx.Unlock()
	idx.tree.ReplaceOrInsert(e)
}

// Get returns the entry stored under key.
func (idx *Index) Get(key uint64) (Entry, bool) {
	idx.RLock()
	defer idx.RUnlock()
	return idx.tree.Get(Entry{Key: key})
}

// Delete removes the entry stored under key and reports whether it existed.
func (idx *Index) Delete(key uint64) bool {
	idx.Lock()
	defer idx.Unlock()
	_, ok := idx.tree.Delete(Entry{Key: key})
	return ok
}

// Scan returns entries with key >= startKey in key order. A non-positive
// limit means no limit.
func (idx *Index) Scan(startKey uint64, limit int) []Entry {
	idx.RLock()
	defer idx.RUnlock()
	entries := make([]Entry, 0, idx.tree.Len())
	idx.tree.AscendGreaterOrEqual(Entry{Key: startKey}, func(e Entry) bool {
		entries = append(entries, e)
		if limit > 0 {
			return len(entries) < limit
		}
		return true
	})
	return entries
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.RLock()
	defer idx.RUnlock()
	return idx.tree.Len()
}
