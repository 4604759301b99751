package utils

import "fmt"

var (
	ErrorIndexOutOfBounds error = fmt.Errorf("string buffer index out of bounds")
	ErrorIncorrectRange   error = fmt.Errorf("range start is lesser than end")
)

// InsertAt returns dst with item inserted at index, shifting everything
// at or after index one place to the right. Panics if index is outside
// [0, len(dst)].
func InsertAt[T any](dst []T, index int, item T) []T {
	if index < 0 || index > len(dst) {
		panic(fmt.Sprintf("utils: insert index %d out of bounds for slice of length %d", index, len(dst)))
	}

	dst = append(dst, item)
	copy(dst[index+1:], dst[index:len(dst)-1])
	dst[index] = item
	return dst
}
