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
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle. After Normalize, Left <= Right and
// Top <= Bottom, so "north" is the side with the smaller y.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect returns the rectangle spanned by two corners given in any order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{Left: x1, Top: y1, Right: x2, Bottom: y2}.Normalize()
}

// Normalize returns a copy of the rectangle with min/max corrected corners.
func (r Rect) Normalize() Rect {
	return Rect{
		Left:   math.Min(r.Left, r.Right),
		Top:    math.Min(r.Top, r.Bottom),
		Right:  math.Max(r.Left, r.Right),
		Bottom: math.Max(r.Top, r.Bottom),
	}
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (float64, float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Contains reports whether the point lies inside the closed rectangle.
// The rectangle is expected to be normalized.
func (r Rect) Contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// IsValid reports whether the rectangle is finite and has a positive area.
// Its extent and center must be finite too.
func (r Rect) IsValid() bool {
	cx, cy := r.Center()
	for _, v := range []float64{r.Left, r.Top, r.Right, r.Bottom, r.Width(), r.Height(), cx, cy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Left < r.Right && r.Top < r.Bottom
}

// Resolves reports whether r can be quadrisected depth times with every
// midpoint strictly inside its parent. Float spacing is widest at the
// outer edges, so descending the NW and SE corners covers every cell.
func (r Rect) Resolves(depth int) bool {
	for _, q := range []Quadrant{NW, SE} {
		cell := r
		for i := 0; i < depth; i++ {
			cx, cy := cell.Center()
			if !(cell.Left < cx && cx < cell.Right && cell.Top < cy && cy < cell.Bottom) {
				return false
			}
			cell = cell.Quadrisect(q)
		}
	}
	return true
}

// Quadrisect returns the sub-rectangle of the given quadrant, split at the
// midpoint of r.
func (r Rect) Quadrisect(q Quadrant) Rect {
	cx, cy := r.Center()
	switch q {
	case NW:
		return Rect{Left: r.Left, Top: r.Top, Right: cx, Bottom: cy}
	case NE:
		return Rect{Left: cx, Top: r.Top, Right: r.Right, Bottom: cy}
	case SW:
		return Rect{Left: r.Left, Top: cy, Right: cx, Bottom: r.Bottom}
	default:
		return Rect{Left: cx, Top: cy, Right: r.Right, Bottom: r.Bottom}
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%v, %v, %v, %v]", r.Left, r.Top, r.Right, r.Bottom)
}
