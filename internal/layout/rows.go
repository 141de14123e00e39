// Package layout implements the row packing math: turning a contiguous
// run of entities into a justified grid row with per-cell display
// geometry and a measured height correction against the nominal row
// height estimate.
package layout

import (
	"github.com/hsa00000/urocissa/internal/model"
)

// Params are the layout tuning knobs for one computation
type Params struct {
	// SubRowHeight is the nominal height of one justified strip of
	// cells before stretching, in pixels.
	SubRowHeight float64
	// Scale is the live UI density scale applied to SubRowHeight.
	Scale float64
	// FixedRowHeight is the nominal estimate for a full row; the
	// difference between it and the measured height is the offset.
	FixedRowHeight float64
	// PaddingPixel is the vertical gap between sub-rows.
	PaddingPixel float64
	// WindowWidth is the viewport width the computation assumes.
	WindowWidth float64
}

// ComputeRow packs entities into the row at rowIndex. start is the data
// index of the first entity. The result carries the viewport width it
// was computed against so the dispatcher can reject it after a resize.
func ComputeRow(entities []model.EnrichedEntity, rowIndex, start int, p Params) model.RowWithOffset {
	target := p.SubRowHeight * p.Scale

	row := model.Row{
		Start:    start,
		End:      start + len(entities) - 1,
		Index:    rowIndex,
		TopPixel: float64(rowIndex) * p.FixedRowHeight,
		Elements: make([]model.DisplayElement, 0, len(entities)),
	}
	if len(entities) == 0 {
		row.End = start
		row.Height = 0
		return model.RowWithOffset{
			Row:         row,
			Offset:      -p.FixedRowHeight,
			WindowWidth: p.WindowWidth,
		}
	}

	var (
		top      float64
		subRow   []model.EnrichedEntity
		subWidth float64
	)

	flush := func(justify bool) {
		if len(subRow) == 0 {
			return
		}
		height := target
		factor := 1.0
		if justify && subWidth > 0 {
			factor = p.WindowWidth / subWidth
			height = target * factor
		}
		for _, e := range subRow {
			w := e.AspectRatio() * target * factor
			row.Elements = append(row.Elements, model.DisplayElement{
				Width:    w,
				Height:   height,
				TopPixel: top,
			})
		}
		top += height + p.PaddingPixel
		subRow = subRow[:0]
		subWidth = 0
	}

	for _, e := range entities {
		w := e.AspectRatio() * target
		if subWidth+w >= p.WindowWidth && len(subRow) > 0 {
			// Overflow: include the current cell, then justify the
			// strip down to exactly the window width.
			subRow = append(subRow, e)
			subWidth += w
			flush(true)
			continue
		}
		subRow = append(subRow, e)
		subWidth += w
		if subWidth >= p.WindowWidth {
			flush(true)
		}
	}
	// Trailing partial strip keeps its natural widths.
	flush(false)

	if top > 0 {
		top -= p.PaddingPixel
	}
	row.Height = top

	return model.RowWithOffset{
		Row:         row,
		Offset:      row.Height - p.FixedRowHeight,
		WindowWidth: p.WindowWidth,
	}
}

// RowRange returns the data index range [start, end) covered by a row.
// The backend clamps the slice to the dataset length.
func RowRange(rowIndex, batchSize int) (int, int) {
	start := rowIndex * batchSize
	return start, start + batchSize
}
