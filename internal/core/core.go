package core

import (
	"errors"
	"os"
	"strings"
)

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}

func Optional[T any](optional *T, defaulT T) T {
	if optional != nil {
		return *optional
	}
	return defaulT
}

// SplitList splits a comma separated list, dropping empty items and surrounding whitespace.
func SplitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func Contains[T comparable](items []T, item T) bool {
	for _, i := range items {
		if i == item {
			return true
		}
	}
	return false
}

// Union returns a followed by the items of b that are not in a.
func Union[T comparable](a, b []T) []T {
	union := append([]T{}, a...)
	for _, item := range b {
		if !Contains(union, item) {
			union = append(union, item)
		}
	}
	return union
}

// SameSet reports whether a and b hold the same items ignoring order and duplicates.
func SameSet[T comparable](a, b []T) bool {
	for _, item := range a {
		if !Contains(b, item) {
			return false
		}
	}
	for _, item := range b {
		if !Contains(a, item) {
			return false
		}
	}
	return true
}
