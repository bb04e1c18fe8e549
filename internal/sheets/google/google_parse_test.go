package google

import (
	"testing"
)

func TestFindRow(t *testing.T) {
	values := [][]interface{}{
		{"ID"},
		{"3"},
		{},
		{" 12 "},
		{float64(40)},
	}

	tests := []struct {
		id   int64
		want int
	}{
		{3, 2},
		{12, 4},
		{40, 5},
		{99, 0},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
	if got := findRow(nil, 1); got != 0 {
		t.Errorf("findRow on empty sheet = %d", got)
	}
}
