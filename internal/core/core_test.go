package core

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestSplitList(t *testing.T) {
	got := SplitList(" DFP-0,, CRT-0 ,")
	if fmt.Sprint(got) != "[DFP-0 CRT-0]" {
		t.Errorf("got %v", got)
	}
	if len(SplitList("")) != 0 {
		t.Errorf("expected empty list")
	}
}

func TestUnion(t *testing.T) {
	got := Union([]string{"a", "b"}, []string{"b", "c"})
	if fmt.Sprint(got) != "[a b c]" {
		t.Errorf("got %v", got)
	}
}

func TestSameSet(t *testing.T) {
	if !SameSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("expected same set")
	}
	if SameSet([]string{"a"}, []string{"a", "b"}) {
		t.Error("expected different sets")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := FileExists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Errorf("got %v %v, want false nil", ok, err)
	}
	ok, err = FileExists(dir)
	if err != nil || !ok {
		t.Errorf("got %v %v, want true nil", ok, err)
	}
}

func TestIsInputError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewInputError("bad %s", "value"))
	if !IsInputError(err) {
		t.Error("expected input error")
	}
	if IsInputError(ErrNoCommonResolution) {
		t.Error("capability error is not input error")
	}
}
