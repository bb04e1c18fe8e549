package google

import (
	"fmt"
	"strconv"
	"strings"
)

// findRow returns the 1-based sheet row whose first cell is id, or 0. The
// header row never matches because its first cell is not numeric.
func findRow(values [][]interface{}, id int64) int {
	for i, row := range values {
		cells := toStrings(row)
		got, err := strconv.ParseInt(strings.TrimSpace(safeGet(cells, 0)), 10, 64)
		if err != nil {
			continue
		}
		if got == id {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
