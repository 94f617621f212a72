package resolution

import (
	"testing"

	"github.com/ItsNotGoodName/x-disper/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Resolution
		err  bool
	}{
		{in: "800x600", want: New(800, 600)},
		{in: "  1024 x 768 ", want: New(1024, 768)},
		{in: "1024", err: true},
		{in: "axb", err: true},
		{in: "0x600", err: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.err {
			if !core.IsInputError(err) {
				t.Errorf("Parse(%q): got %v, want input error", tt.in, err)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("Parse(%q): got %v %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestEqualIgnoresWeight(t *testing.T) {
	a := Resolution{Width: 800, Height: 600, Weight: 3}
	if !a.Equal(New(800, 600)) {
		t.Error("weight must not affect equality")
	}
}

func TestOrdering(t *testing.T) {
	small := Resolution{Width: 640, Height: 480, Weight: 1}
	big := New(1920, 1080)
	if !big.Less(small) {
		t.Error("weight should rank before area")
	}
	if !New(640, 480).Less(big) {
		t.Error("area should break weight ties")
	}
}

func TestParseModeline(t *testing.T) {
	tests := []struct {
		in   string
		want Resolution
		ok   bool
	}{
		{in: `source=edid :: "1920x1080" 148.500 1920 2008 2052 2200 1080 1084 1089 1125 +hsync +vsync`, want: New(1920, 1080), ok: true},
		{in: `source=xserver ::  "1024x768_60" 65.0 1024 1048 1184 1344 768 771 777 806`, want: New(1024, 768), ok: true},
		{in: `source=nv :: "nvidia-auto-select" 148.500 1920`, ok: false},
		{in: `garbage`, ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseModeline(tt.in)
		if ok != tt.ok || (ok && !got.Equal(tt.want)) {
			t.Errorf("ParseModeline(%q): got %v %v, want %v %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseModelinesDeduplicates(t *testing.T) {
	got := ParseModelines([]string{
		`a :: "800x600" 1`,
		`b :: "800x600_75" 2`,
		`c :: "640x480" 3`,
	})
	if got.String() != "800x600, 640x480" {
		t.Errorf("got %q", got.String())
	}
}

func TestListMax(t *testing.T) {
	list, err := ParseList("640x480, 1024x768, 800x600")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := list.Max()
	if !ok || !got.Equal(New(1024, 768)) {
		t.Errorf("got %v, want 1024x768", got)
	}

	got, _ = list.Weighted(New(800, 600), 1).Max()
	if !got.Equal(New(800, 600)) {
		t.Errorf("got %v, want weighted 800x600", got)
	}

	if _, ok := (List{}).Max(); ok {
		t.Error("empty list has no max")
	}
}

func TestFallback(t *testing.T) {
	if Fallback().String() != "800x600, 640x480" {
		t.Errorf("got %q", Fallback().String())
	}
}
