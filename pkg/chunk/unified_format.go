package chunk

import (
	"github.com/daviszhen/vec/pkg/util"
)

// UnifiedFormat is a read-only view of a vector: row i is
// Data[Sel.GetIndex(i)], valid iff Mask.RowIsValid(Sel.GetIndex(i)).
// It borrows the storage of the vector it was built from.
type UnifiedFormat struct {
	Sel      *SelectVector
	Data     []byte
	Mask     *util.Bitmap
	InterSel SelectVector
	PTypSize int
}

func GetSliceInPhyFormatUnifiedFormat[T any](uni *UnifiedFormat) []T {
	return util.ToSlice[T](uni.Data, uni.PTypSize)
}
