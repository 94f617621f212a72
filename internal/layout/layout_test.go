package layout

import (
	"testing"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

var displays = []string{"A", "B", "C"}

func TestStripRight(t *testing.T) {
	sel := resolution.Broadcast(resolution.New(800, 600), displays)
	tiles := Strip{Direction: Right}.Tiles(displays, sel)

	for i, want := range []int{0, 800, 1600} {
		if tiles[i].X != want || tiles[i].Y != 0 {
			t.Errorf("tile %d: got %d,%d, want %d,0", i, tiles[i].X, tiles[i].Y, want)
		}
	}
	if w, h := Bounds(tiles); w != 2400 || h != 600 {
		t.Errorf("got bounds %dx%d, want 2400x600", w, h)
	}
}

func TestStripLeft(t *testing.T) {
	sel := resolution.Selection{
		"A": resolution.New(1024, 768),
		"B": resolution.New(800, 600),
		"C": resolution.New(640, 480),
	}
	tiles := Strip{Direction: Left}.Tiles(displays, sel)

	for i, want := range []int{1440, 640, 0} {
		if tiles[i].X != want {
			t.Errorf("tile %d: got x %d, want %d", i, tiles[i].X, want)
		}
	}
	if w, h := Bounds(tiles); w != 2464 || h != 768 {
		t.Errorf("got bounds %dx%d, want 2464x768", w, h)
	}
}

func TestStripBottom(t *testing.T) {
	sel := resolution.Selection{
		"A": resolution.New(1024, 768),
		"B": resolution.New(800, 600),
	}
	tiles := Strip{Direction: Bottom}.Tiles([]string{"A", "B"}, sel)
	if tiles[1].X != 0 || tiles[1].Y != 768 {
		t.Errorf("got %d,%d, want 0,768", tiles[1].X, tiles[1].Y)
	}
	if w, h := Bounds(tiles); w != 1024 || h != 1368 {
		t.Errorf("got bounds %dx%d, want 1024x1368", w, h)
	}
}

func TestStripSkipsOff(t *testing.T) {
	sel := resolution.Selection{
		"A": resolution.New(800, 600),
		"B": resolution.Off,
		"C": resolution.New(800, 600),
	}
	tiles := Strip{Direction: Right}.Tiles(displays, sel)
	if len(tiles) != 2 || tiles[1].Display != "C" || tiles[1].X != 800 {
		t.Errorf("got %+v", tiles)
	}
}

func TestClone(t *testing.T) {
	sel := resolution.Broadcast(resolution.New(1024, 768), displays)
	tiles := Clone{}.Tiles(displays, sel)
	if len(tiles) != 3 {
		t.Fatalf("got %d tiles", len(tiles))
	}
	for _, tile := range tiles {
		if tile.X != 0 || tile.Y != 0 {
			t.Errorf("got %+v, want origin", tile)
		}
	}
	if w, h := Bounds(tiles); w != 1024 || h != 768 {
		t.Errorf("got bounds %dx%d", w, h)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection(" Left "); err != nil || d != Left {
		t.Errorf("got %v %v", d, err)
	}
	if _, err := ParseDirection("up"); !core.IsInputError(err) {
		t.Errorf("got %v, want input error", err)
	}
}
