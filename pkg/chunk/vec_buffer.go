package chunk

import (
	"runtime"
	"sync"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

type VecBufferType int

const (
	//array of data
	VBT_STANDARD VecBufferType = iota
	//selection of a dictionary vector
	VBT_DICT
	//child of a dictionary vector
	VBT_CHILD
	//string heap
	VBT_STRING
	//children of a struct vector
	VBT_STRUCT
	//child of a list vector
	VBT_LIST
	//buffer from a BufferManager
	VBT_MANAGED
	//bytes owned by the caller
	VBT_OPAQUE
)

func (typ VecBufferType) String() string {
	switch typ {
	case VBT_STANDARD:
		return "standard"
	case VBT_DICT:
		return "dictionary"
	case VBT_CHILD:
		return "child"
	case VBT_STRING:
		return "string"
	case VBT_STRUCT:
		return "struct"
	case VBT_LIST:
		return "list"
	case VBT_MANAGED:
		return "managed"
	case VBT_OPAQUE:
		return "opaque"
	}
	return "unknown"
}

// BufferHandle is a pinned allocation of an external buffer pool.
// Data stays valid until Release.
type BufferHandle interface {
	Data() []byte
	Release()
}

// VecBuffer backs a vector. Vectors share buffers by pointer; a buffer
// lives as long as its last holder.
type VecBuffer struct {
	BufTyp VecBufferType
	Data   []byte
	//VBT_DICT
	Sel *SelectVector
	//VBT_CHILD, VBT_LIST
	Child *Vector
	//VBT_STRING
	Heap *StringHeap
	refs []*VecBuffer
	//VBT_STRUCT
	Children []*Vector
	//VBT_LIST
	Size     int
	Capacity int
	//VBT_MANAGED
	Handle      BufferHandle
	releaseOnce sync.Once
	//Go objects reachable only through Data
	pins []any
}

func (buf *VecBuffer) GetSelVector() *SelectVector {
	util.AssertFunc(buf.BufTyp == VBT_DICT)
	return buf.Sel
}

func NewBuffer(sz int) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STANDARD,
		Data:   util.GAlloc.Alloc(sz),
	}
}

func NewStandardBuffer(lt common.LType, cap int) *VecBuffer {
	return NewBuffer(lt.GetInternalType().Size() * cap)
}

func NewDictBuffer(data []uint32) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_DICT,
		Sel: &SelectVector{
			SelVec: data,
		},
	}
}

// NewDictBuffer2 borrows the selection array of sel.
func NewDictBuffer2(sel *SelectVector) *VecBuffer {
	buf := &VecBuffer{
		BufTyp: VBT_DICT,
		Sel:    &SelectVector{},
	}
	buf.Sel.Init2(sel)
	return buf
}

func NewChildBuffer(child *Vector) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_CHILD,
		Child:  child,
	}
}

func NewStringBuffer() *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_STRING,
		Heap:   NewStringHeap(),
	}
}

// AddHeapReference pins other so that strings borrowed from it
// stay valid as long as buf.
func (buf *VecBuffer) AddHeapReference(other *VecBuffer) {
	util.AssertFunc(buf.BufTyp == VBT_STRING)
	if other == nil || other == buf {
		return
	}
	for _, ref := range buf.refs {
		if ref == other {
			return
		}
	}
	buf.refs = append(buf.refs, other)
}

func (buf *VecBuffer) References() []*VecBuffer {
	return buf.refs
}

func NewStructBuffer(typ common.LType, cap int) *VecBuffer {
	util.AssertFunc(typ.Id == common.LTID_STRUCT)
	buf := &VecBuffer{
		BufTyp: VBT_STRUCT,
	}
	for _, childTyp := range typ.Children {
		buf.Children = append(buf.Children, NewVector(childTyp, true, cap))
	}
	return buf
}

func NewListBuffer(typ common.LType, cap int) *VecBuffer {
	util.AssertFunc(typ.Id == common.LTID_LIST)
	return &VecBuffer{
		BufTyp:   VBT_LIST,
		Child:    NewVector(typ.ListChild(), true, cap),
		Capacity: cap,
	}
}

// Reserve grows the list child to hold at least cap rows,
// doubling the capacity.
func (buf *VecBuffer) Reserve(cap int) {
	util.AssertFunc(buf.BufTyp == VBT_LIST)
	if cap <= buf.Capacity {
		return
	}
	newCap := max(buf.Capacity, 1)
	for newCap < cap {
		newCap *= 2
	}
	buf.Child.Resize(buf.Capacity, newCap)
	buf.Capacity = newCap
}

// NewManagedBuffer wraps a handle. The handle is released by Release
// or, failing that, when the buffer becomes unreachable.
func NewManagedBuffer(handle BufferHandle) *VecBuffer {
	buf := &VecBuffer{
		BufTyp: VBT_MANAGED,
		Data:   handle.Data(),
		Handle: handle,
	}
	runtime.SetFinalizer(buf, func(b *VecBuffer) {
		b.Release()
	})
	return buf
}

func (buf *VecBuffer) Release() {
	if buf.BufTyp != VBT_MANAGED {
		return
	}
	buf.releaseOnce.Do(func() {
		buf.Handle.Release()
		buf.Data = nil
	})
}

func NewOpaqueBuffer(data []byte) *VecBuffer {
	return &VecBuffer{
		BufTyp: VBT_OPAQUE,
		Data:   data,
	}
}

// Pin keeps obj alive as long as buf. Used when Data holds
// pointers to Go memory.
func (buf *VecBuffer) Pin(obj any) {
	buf.pins = append(buf.pins, obj)
}
