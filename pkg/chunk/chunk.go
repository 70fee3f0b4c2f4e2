package chunk

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Chunk is a batch of equally long vectors. Count <= Cap always holds.
type Chunk struct {
	Data    []*Vector
	Count   int
	_Cap    int
	caches  []*VectorCache
	initCap int
}

// Init allocates one flat vector per type with cap rows.
func (c *Chunk) Init(types []common.LType, cap int) {
	c._Cap = cap
	c.initCap = cap
	c.Count = 0
	c.Data = nil
	c.caches = nil
	for _, lType := range types {
		cache := NewVectorCache(lType, cap)
		vec := NewVector(lType, false, 0)
		cache.ResetFromCache(vec)
		c.caches = append(c.caches, cache)
		c.Data = append(c.Data, vec)
	}
}

// InitEmpty creates vectors without storage. They are meant to
// reference other vectors.
func (c *Chunk) InitEmpty(types []common.LType) {
	c._Cap = util.VectorSize()
	c.initCap = c._Cap
	c.Count = 0
	c.Data = nil
	c.caches = nil
	for _, lType := range types {
		c.Data = append(c.Data, NewVector(lType, false, 0))
	}
}

// Reset restores the state after Init. Storage comes back from the
// caches.
func (c *Chunk) Reset() {
	if len(c.Data) == 0 {
		return
	}
	if len(c.caches) == len(c.Data) {
		for i, vec := range c.Data {
			c.caches[i].ResetFromCache(vec)
		}
	} else {
		for _, vec := range c.Data {
			vec.Reset()
		}
	}
	c._Cap = c.initCap
	c.Count = 0
}

func (c *Chunk) Destroy() {
	c.Data = nil
	c.caches = nil
	c.Count = 0
	c._Cap = 0
	c.initCap = 0
}

func (c *Chunk) Cap() int {
	return c._Cap
}

func (c *Chunk) SetCap(cap int) {
	c._Cap = cap
}

func (c *Chunk) SetCard(count int) {
	util.AssertFunc(count <= c._Cap)
	c.Count = count
}

func (c *Chunk) Card() int {
	return c.Count
}

func (c *Chunk) ColumnCount() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}

func (c *Chunk) Types() []common.LType {
	ret := make([]common.LType, 0, c.ColumnCount())
	for _, vec := range c.Data {
		ret = append(ret, vec.Typ())
	}
	return ret
}

func (c *Chunk) ReferenceIndice(other *Chunk, indice []int) {
	c.SetCap(other.Cap())
	c.SetCard(other.Card())
	for i, idx := range indice {
		c.Data[i].Reference(other.Data[idx])
	}
}

// Reference makes the columns of c alias the columns of other.
func (c *Chunk) Reference(other *Chunk) {
	util.AssertFunc(other.ColumnCount() <= c.ColumnCount())
	c.SetCap(other.Cap())
	c.SetCard(other.Card())
	for i := 0; i < other.ColumnCount(); i++ {
		c.Data[i].Reference(other.Data[i])
	}
}

// Move takes over the vectors of other and leaves other empty.
func (c *Chunk) Move(other *Chunk) {
	c.Data = other.Data
	c.caches = other.caches
	c.Count = other.Count
	c._Cap = other._Cap
	c.initCap = other.initCap
	other.Destroy()
}

// Append copies the rows sel[0..count) of other behind the rows of c.
// With resize, the capacity grows to the next power of two instead of
// failing.
func (c *Chunk) Append(other *Chunk, resize bool, sel *SelectVector, count int) error {
	if c.ColumnCount() != other.ColumnCount() {
		return fmt.Errorf("%w: %d vs %d",
			ErrColumnCountMismatch, c.ColumnCount(), other.ColumnCount())
	}
	for i, vec := range c.Data {
		if !vec.Typ().Equal(other.Data[i].Typ()) {
			return fmt.Errorf("%w: column %d %v vs %v",
				ErrTypeMismatch, i, vec.Typ(), other.Data[i].Typ())
		}
	}
	if count == 0 {
		return nil
	}
	newSize := c.Count + count
	if newSize > c._Cap {
		if !resize {
			return fmt.Errorf("%w: %d rows into capacity %d",
				ErrCapacityExceeded, newSize, c._Cap)
		}
		newCap := int(util.NextPowerOfTwo(uint64(newSize)))
		for _, vec := range c.Data {
			c.flattenColumn(vec)
			vec.Resize(c._Cap, newCap)
		}
		c._Cap = newCap
	}
	for i, vec := range c.Data {
		c.flattenColumn(vec)
		Copy(other.Data[i], vec, sel, count, 0, c.Count)
	}
	c.Count = newSize
	for _, vec := range c.Data {
		vec.DebugVerify(c.Count)
	}
	return nil
}

func (c *Chunk) flattenColumn(vec *Vector) {
	if vec.PhyFormat().IsFlat() {
		return
	}
	vec.Flatten(c.Count)
	if vec.Capacity() < c._Cap {
		vec.Resize(vec.Capacity(), c._Cap)
	}
}

// Copy copies the rows [offset, Card) of c into other.
func (c *Chunk) Copy(other *Chunk, offset int) {
	util.AssertFunc(c.ColumnCount() == other.ColumnCount())
	util.AssertFunc(other.Card() == 0)
	for i := 0; i < c.ColumnCount(); i++ {
		util.AssertFunc(other.Data[i].PhyFormat().IsFlat())
		Copy(c.Data[i], other.Data[i], nil, c.Card(), offset, 0)
	}
	other.SetCard(c.Card() - offset)
}

// Slice makes the columns of c dictionary views of the columns of
// other keyed by sel.
func (c *Chunk) Slice(other *Chunk, sel *SelectVector, count int, colOffset int) {
	util.AssertFunc(other.ColumnCount() <= colOffset+c.ColumnCount())
	c.SetCard(count)
	for i := 0; i < other.ColumnCount(); i++ {
		if other.Data[i].PhyFormat().IsDict() {
			c.Data[i+colOffset].Reference(other.Data[i])
			c.Data[i+colOffset].Slice2(sel, count)
		} else {
			c.Data[i+colOffset].Slice(other.Data[i], sel, count)
		}
	}
}

func (c *Chunk) SliceItself(sel *SelectVector, cnt int) {
	c.Count = cnt
	for i := 0; i < c.ColumnCount(); i++ {
		c.Data[i].SliceOnSelf(sel, cnt)
	}
}

func (c *Chunk) ToUnifiedFormat() []*UnifiedFormat {
	ret := make([]*UnifiedFormat, c.ColumnCount())
	for i := 0; i < c.ColumnCount(); i++ {
		ret[i] = &UnifiedFormat{}
		c.Data[i].ToUnifiedFormat(c.Card(), ret[i])
	}
	return ret
}

func (c *Chunk) Flatten() {
	for i := 0; i < c.ColumnCount(); i++ {
		c.Data[i].Flatten(c.Card())
	}
}

func (c *Chunk) Hash(result *Vector) {
	util.AssertFunc(result.Typ().Id == common.HashType().Id)
	HashTypeSwitch(c.Data[0], result, nil, c.Card(), false)
	for i := 1; i < c.ColumnCount(); i++ {
		CombineHashTypeSwitch(result, c.Data[i], nil, c.Card(), false)
	}
}

// Verify checks the invariants of every column.
func (c *Chunk) Verify() error {
	if c.Count > c._Cap {
		return fmt.Errorf("%w: card %d > cap %d", ErrInvalidVector, c.Count, c._Cap)
	}
	for i, vec := range c.Data {
		if err := vec.Verify(c.Count); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func (c *Chunk) Print() {
	for i := 0; i < c.Card(); i++ {
		for j := 0; j < c.ColumnCount(); j++ {
			val := c.Data[j].GetValue(i)
			fmt.Print(val.String())
			fmt.Print("\t")
		}
		fmt.Println()
	}
}

func (c *Chunk) Print2(rowPrefix string) {
	for i := 0; i < c.Card(); i++ {
		fields := make([]zap.Field, 0)
		for j := 0; j < c.ColumnCount(); j++ {
			val := c.Data[j].GetValue(i)
			fields = append(fields, zap.String("", val.String()))
		}
		util.Info(rowPrefix, fields...)
	}
}

func (c *Chunk) Serialize(serial util.Serialize) error {
	//save row count
	err := util.Write[uint32](uint32(c.Card()), serial)
	if err != nil {
		return err
	}
	//save column count
	err = util.Write[uint32](uint32(c.ColumnCount()), serial)
	if err != nil {
		return err
	}
	//save column types
	for i := 0; i < c.ColumnCount(); i++ {
		err = c.Data[i].Typ().Serialize(serial)
		if err != nil {
			return err
		}
	}
	//save column data
	for i := 0; i < c.ColumnCount(); i++ {
		err = c.Data[i].Serialize(c.Card(), serial)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveToFile writes the rows as tab separated text.
func (c *Chunk) SaveToFile(w io.Writer) (err error) {
	rowCnt := c.Card()
	colCnt := c.ColumnCount()
	for i := 0; i < rowCnt; i++ {
		for j := 0; j < colCnt; j++ {
			val := c.Data[j].GetValue(i)
			_, err = io.WriteString(w, val.String())
			if err != nil {
				return err
			}
			if j == colCnt-1 {
				continue
			}
			_, err = io.WriteString(w, "\t")
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "\n")
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a chunk written by Serialize. A clean end of input
// leaves c untouched and returns nil.
func (c *Chunk) Deserialize(deserial util.Deserialize) error {
	//read row count
	rowCnt := uint32(0)
	err := util.Read[uint32](&rowCnt, deserial)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	//read column count
	colCnt := uint32(0)
	err = util.Read[uint32](&colCnt, deserial)
	if err != nil {
		return err
	}
	//read column types
	typs := make([]common.LType, colCnt)
	for i := uint32(0); i < colCnt; i++ {
		typs[i], err = common.DeserializeLType(deserial)
		if err != nil {
			return err
		}
	}
	c.Init(typs, max(util.VectorSize(), int(rowCnt)))
	c.SetCard(int(rowCnt))
	//read column data
	for i := uint32(0); i < colCnt; i++ {
		err = c.Data[i].Deserialize(int(rowCnt), deserial)
		if err != nil {
			return err
		}
	}
	return nil
}
