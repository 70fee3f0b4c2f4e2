package chunk

import (
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// VectorCache keeps the original storage of a chunk column so that
// Chunk.Reset can restore it without allocating.
type VectorCache struct {
	typ      common.LType
	cap      int
	buf      *VecBuffer
	children []*VectorCache
}

func NewVectorCache(typ common.LType, cap int) *VectorCache {
	cache := &VectorCache{
		typ: typ,
		cap: cap,
	}
	pTyp := typ.GetInternalType()
	if pTyp.Size() > 0 {
		cache.buf = NewStandardBuffer(typ, cap)
	}
	switch pTyp {
	case common.STRUCT:
		for _, childTyp := range typ.Children {
			cache.children = append(cache.children, NewVectorCache(childTyp, cap))
		}
	case common.LIST:
		cache.children = append(cache.children, NewVectorCache(typ.ListChild(), cap))
	}
	return cache
}

func (cache *VectorCache) Type() common.LType {
	return cache.typ
}

// ResetFromCache makes vec an empty flat vector on the cached storage.
func (cache *VectorCache) ResetFromCache(vec *Vector) {
	util.AssertFunc(vec.Typ().Equal(cache.typ))
	vec._PhyFormat = PF_FLAT
	vec.Mask = &util.Bitmap{}
	vec.Aux = nil
	vec.Buf = cache.buf
	vec.Data = nil
	if cache.buf != nil {
		vec.Data = cache.buf.Data
	}
	switch cache.typ.GetInternalType() {
	case common.STRUCT:
		aux := &VecBuffer{BufTyp: VBT_STRUCT}
		for _, childCache := range cache.children {
			child := NewVector(childCache.typ, false, 0)
			childCache.ResetFromCache(child)
			aux.Children = append(aux.Children, child)
		}
		vec.Aux = aux
	case common.LIST:
		child := NewVector(cache.children[0].typ, false, 0)
		cache.children[0].ResetFromCache(child)
		vec.Aux = &VecBuffer{
			BufTyp:   VBT_LIST,
			Child:    child,
			Capacity: cache.children[0].cap,
		}
	}
}
