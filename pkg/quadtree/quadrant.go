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

// Quadrant names one of the four children of a node.
type Quadrant int

// Quadrants in child slot order.
const (
	NW Quadrant = iota
	NE
	SW
	SE
)

var quadrantNames = [...]string{"nw", "ne", "sw", "se"}

func (q Quadrant) String() string {
	if q < NW || q > SE {
		return "unknown"
	}
	return quadrantNames[q]
}

// Orient classifies the destination point relative to the source point.
// dest_x < src_x selects the west quadrants and dest_y < src_y the north
// ones, so points on either axis through the source resolve east/south.
func Orient(srcX, srcY, destX, destY float64) Quadrant {
	if destX < srcX {
		if destY < srcY {
			return NW
		}
		return SW
	}
	if destY < srcY {
		return NE
	}
	return SE
}

// OrientNodes classifies the center of dest relative to the center of src.
// It must agree with Orient, FindFather re-derives child slots with it.
func OrientNodes(src, dest *Node) Quadrant {
	srcX, srcY := src.rect.Center()
	destX, destY := dest.rect.Center()
	return Orient(srcX, srcY, destX, destY)
}
