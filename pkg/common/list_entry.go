package common

// ListEntry is the element of a LIST vector: the rows
// [Offset, Offset+Length) of its child vector.
type ListEntry struct {
	Offset uint64
	Length uint64
}

func (le *ListEntry) Equal(o *ListEntry) bool {
	return le.Offset == o.Offset && le.Length == o.Length
}
