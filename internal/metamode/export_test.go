package metamode

import (
	"testing"

	"github.com/ItsNotGoodName/x-disper/internal/core"
)

func TestExportString(t *testing.T) {
	e := Export{
		Displays:  []string{"DFP-0", "CRT-0"},
		ModeGroup: mustParse(t, "id=50, source=nv-control :: DFP-0: 1024x768 +0+0, CRT-0: 1024x768 +0+0"),
	}
	want := "associated displays: DFP-0, CRT-0\nmetamode: DFP-0: 1024x768 +0+0, CRT-0: 1024x768 +0+0\n"
	if got := e.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseExport(t *testing.T) {
	e, err := ParseExport("\nmetamode: DFP-0: 1280x1024 +0+0, CRT-0: 1024x768 +1280+0\nAssociated Displays: DFP-0,CRT-0\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Displays) != 2 || e.Displays[1] != "CRT-0" {
		t.Errorf("got displays %v", e.Displays)
	}
	if e.ModeGroup.String() != "DFP-0: 1280x1024 +0+0, CRT-0: 1024x768 +1280+0" {
		t.Errorf("got %q", e.ModeGroup)
	}

	again, err := ParseExport(e.String())
	if err != nil {
		t.Fatal(err)
	}
	if !again.ModeGroup.Equal(e.ModeGroup) {
		t.Error("round trip changed the mode group")
	}
}

func TestParseExportMissing(t *testing.T) {
	for _, s := range []string{
		"metamode: DFP-0: 800x600 +0+0",
		"associated displays: DFP-0",
		"associated displays: \nmetamode: DFP-0: 800x600",
	} {
		if _, err := ParseExport(s); !core.IsInputError(err) {
			t.Errorf("ParseExport(%q): got %v, want input error", s, err)
		}
	}
}
