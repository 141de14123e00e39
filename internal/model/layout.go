package model

// DisplayElement is one visible grid cell inside a row: its display
// size and its accumulated top pixel within the row.
type DisplayElement struct {
	Width    float64 `json:"displayWidth"`
	Height   float64 `json:"displayHeight"`
	TopPixel float64 `json:"displayTopPixelAccumulated"`
}

// Row is a horizontal strip of the grid covering a contiguous run of
// entity indices. Height starts as a nominal estimate; Offset is the
// measured correction applied once per row lifetime.
type Row struct {
	Start    int              `json:"start"`
	End      int              `json:"end"`
	Height   float64          `json:"rowHeight"`
	Elements []DisplayElement `json:"displayElements"`
	TopPixel float64          `json:"topPixelAccumulated"`
	Index    int              `json:"rowIndex"`
	Offset   float64          `json:"offset"`
}

// RowWithOffset pairs a computed row with its measured height
// correction and the viewport width the computation assumed.
type RowWithOffset struct {
	Row         Row     `json:"row"`
	Offset      float64 `json:"offset"`
	WindowWidth float64 `json:"windowWidth"`
}
