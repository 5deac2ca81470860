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

package chart

import (
	"io"
	"os"

	"github.com/elliotchance/pie/v2"
	"github.com/go-echarts/go-echarts/charts"
	"github.com/phen0menon/mxquadtree/pkg/errs"
	"github.com/phen0menon/mxquadtree/pkg/quadtree"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// maxChartDepth caps the chart grid at 64x64 bars, deeper cells are merged.
const maxChartDepth = 6

var rangeColor = []string{
	"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8",
	"#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026",
}

// Occupancy buckets the occupied leaves of a layout into a grid of at most
// 2^maxChartDepth columns and rows. Each item is {col, row, count}.
func Occupancy(layout *quadtree.Layout) (size int, data [][3]int) {
	depth := layout.MaxDepth
	shift := 0
	if depth > maxChartDepth {
		shift = depth - maxChartDepth
		depth = maxChartDepth
	}
	size = 1 << depth
	counts := make(map[[2]int]int)
	for _, item := range layout.Occupied {
		counts[[2]int{int(item.Cell.Col >> shift), int(item.Cell.Row >> shift)}]++
	}
	data = make([][3]int, 0, len(counts))
	for col := 0; col < size; col++ {
		for row := 0; row < size; row++ {
			if c, ok := counts[[2]int{col, row}]; ok {
				data = append(data, [3]int{col, row, c})
			}
		}
	}
	return size, data
}

// Bar3D renders the occupancy of layout as an HTML bar chart.
func Bar3D(layout *quadtree.Layout, w io.Writer) error {
	size, data := Occupancy(layout)
	counts := make([]int, 0, len(data))
	for _, d := range data {
		counts = append(counts, d[2])
	}
	maxCount := pie.Max(counts)
	if maxCount == 0 {
		maxCount = 1
	}

	bar3d := charts.NewBar3D()
	bar3d.SetGlobalOptions(
		charts.TitleOpts{Title: "Occupied cells"},
		charts.VisualMapOpts{
			Range:      []float32{0, float32(maxCount)},
			Calculable: true,
			InRange:    charts.VMInRange{Color: rangeColor},
			Min:        0,
			Max:        float32(maxCount),
		},
		charts.Grid3DOpts{BoxDepth: 100, BoxWidth: 100},
	)
	axis := make([]int, size)
	for i := range axis {
		axis[i] = i
	}
	bar3d.AddXYAxis(axis, axis).AddZAxis("occupied", data)
	if err := bar3d.Render(w); err != nil {
		return errs.ErrRenderChart.Wrap(err).GenWithStackByCause()
	}
	return nil
}

// RenderFile writes the chart of layout to the named file.
func RenderFile(layout *quadtree.Layout, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return errs.ErrChartOutputFile.Wrap(err).GenWithStackByArgs(name)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Error("close chart output file failed", zap.String("name", name), errs.ZapError(err))
		}
	}()
	return Bar3D(layout, f)
}
