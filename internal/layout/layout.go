// Package layout places displays on the screen.
package layout

import (
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

type Direction string

const (
	Left   Direction = "left"
	Right  Direction = "right"
	Top    Direction = "top"
	Bottom Direction = "bottom"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Left, Right, Top, Bottom:
		return d, nil
	default:
		return "", core.NewInputError("invalid direction %q", s)
	}
}

func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

// Tile is a display's area on the screen.
type Tile struct {
	Display string
	X       int
	Y       int
	Width   uint
	Height  uint
}

type Layout interface {
	Tiles(displays []string, sel resolution.Selection) []Tile
}

// Clone puts every display at the origin.
type Clone struct{}

func (Clone) Tiles(displays []string, sel resolution.Selection) []Tile {
	tiles := make([]Tile, 0, len(displays))
	for _, display := range sel.Enabled(displays) {
		r := sel[display]
		tiles = append(tiles, Tile{Display: display, Width: r.Width, Height: r.Height})
	}
	return tiles
}

// Strip places each display next to the previous one in Direction, aligned at 0 on the other axis.
type Strip struct {
	Direction Direction
}

func (l Strip) Tiles(displays []string, sel resolution.Selection) []Tile {
	enabled := sel.Enabled(displays)
	tiles := make([]Tile, 0, len(enabled))

	offset := 0
	for _, display := range enabled {
		r := sel[display]
		tile := Tile{Display: display, Width: r.Width, Height: r.Height}
		size := int(r.Height)
		if l.Direction.horizontal() {
			size = int(r.Width)
		}

		switch l.Direction {
		case Right:
			tile.X = offset
		case Bottom:
			tile.Y = offset
		case Left:
			tile.X = offset - size
		case Top:
			tile.Y = offset - size
		}

		if l.Direction == Left || l.Direction == Top {
			offset -= size
		} else {
			offset += size
		}

		tiles = append(tiles, tile)
	}

	return normalize(tiles)
}

// normalize shifts tiles so the top left corner of the bounding box is at the origin.
func normalize(tiles []Tile) []Tile {
	if len(tiles) == 0 {
		return tiles
	}
	minX, minY := tiles[0].X, tiles[0].Y
	for _, tile := range tiles[1:] {
		minX = min(minX, tile.X)
		minY = min(minY, tile.Y)
	}
	for i := range tiles {
		tiles[i].X -= minX
		tiles[i].Y -= minY
	}
	return tiles
}

// Bounds returns the size of the smallest box holding every tile.
func Bounds(tiles []Tile) (width, height uint) {
	if len(tiles) == 0 {
		return 0, 0
	}
	minX, minY := tiles[0].X, tiles[0].Y
	maxX, maxY := tiles[0].X+int(tiles[0].Width), tiles[0].Y+int(tiles[0].Height)
	for _, tile := range tiles[1:] {
		minX = min(minX, tile.X)
		minY = min(minY, tile.Y)
		maxX = max(maxX, tile.X+int(tile.Width))
		maxY = max(maxY, tile.Y+int(tile.Height))
	}
	return uint(maxX - minX), uint(maxY - minY)
}
