// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"math"
)

const (
	BitsPerEntry = 64
	EntryBytes   = 8
	FullEntry    = uint64(math.MaxUint64)
)

// Bitmap is the validity mask of a vector. Bit i%64 of entry i/64 is set
// when row i is valid. A nil Bits means every row is valid.
//
// Bits is either owned or borrowed from another bitmap (ShareWith).
// Writes through a borrowed bitmap copy the entries first.
type Bitmap struct {
	Bits   []uint64
	shared bool
}

func NewBitmap(count int) *Bitmap {
	bm := &Bitmap{}
	bm.Init(count)
	return bm
}

func (bm *Bitmap) Data() []byte {
	return ToBytes(bm.Bits)
}

func (bm *Bitmap) Bytes(count int) int {
	return EntryCount(count) * EntryBytes
}

func (bm *Bitmap) Init(count int) {
	cnt := EntryCount(count)
	bm.Bits = make([]uint64, cnt)
	bm.shared = false
	for i := range bm.Bits {
		bm.Bits[i] = FullEntry
	}
}

// ShareWith makes bm alias the entries of other without owning them.
func (bm *Bitmap) ShareWith(other *Bitmap) {
	bm.Bits = other.Bits
	bm.shared = other.Bits != nil
}

func (bm *Bitmap) Shared() bool {
	return bm.shared
}

// EnsureWritable gives bm its own copy of the entries if they are borrowed.
func (bm *Bitmap) EnsureWritable() {
	if !bm.shared {
		return
	}
	own := make([]uint64, len(bm.Bits))
	copy(own, bm.Bits)
	bm.Bits = own
	bm.shared = false
}

func (bm *Bitmap) Invalid() bool {
	return len(bm.Bits) == 0
}

// GetEntry returns entry eIdx. Entries past the materialized ones are full.
func (bm *Bitmap) GetEntry(eIdx uint64) uint64 {
	if bm.Invalid() || eIdx >= uint64(len(bm.Bits)) {
		return FullEntry
	}
	return bm.Bits[eIdx]
}

func GetEntryIndex(idx uint64) (uint64, uint64) {
	return idx / BitsPerEntry, idx % BitsPerEntry
}

func EntryIsSet(e uint64, pos uint64) bool {
	return e&(uint64(1)<<pos) != 0
}

func RowIsValidInEntry(e uint64, pos uint64) bool {
	return EntryIsSet(e, pos)
}

func NoneValidInEntry(entry uint64) bool {
	return entry == 0
}

func AllValidInEntry(entry uint64) bool {
	return entry == FullEntry
}

// Combine ands other into bm. Row i is valid afterwards iff it was valid
// in both.
func (bm *Bitmap) Combine(other *Bitmap, count int) {
	if other.AllValid() {
		return
	}
	if bm.AllValid() {
		bm.ShareWith(other)
		return
	}
	if &bm.Bits[0] == &other.Bits[0] {
		return
	}
	oldData := bm.Bits
	eCnt := EntryCount(count)
	bm.Bits = make([]uint64, max(eCnt, len(oldData)))
	bm.shared = false
	for i := range bm.Bits {
		bm.Bits[i] = FullEntry
	}
	copy(bm.Bits, oldData)
	for i := 0; i < min(eCnt, len(other.Bits)); i++ {
		bm.Bits[i] &= other.Bits[i]
	}
}

func (bm *Bitmap) RowIsValidUnsafe(idx uint64) bool {
	eIdx, pos := GetEntryIndex(idx)
	return EntryIsSet(bm.Bits[eIdx], pos)
}

// RowIsValid treats rows past the materialized entries as valid.
func (bm *Bitmap) RowIsValid(idx uint64) bool {
	if bm.Invalid() || idx >= uint64(len(bm.Bits))*BitsPerEntry {
		return true
	}
	return bm.RowIsValidUnsafe(idx)
}

func (bm *Bitmap) SetValid(ridx uint64) {
	//rows past the entries are valid once resized
	if bm.Invalid() || int(ridx) >= len(bm.Bits)*BitsPerEntry {
		return
	}
	bm.EnsureWritable()
	bm.SetValidUnsafe(ridx)
}

func (bm *Bitmap) Set(ridx uint64, valid bool) {
	if valid {
		bm.SetValid(ridx)
	} else {
		bm.SetInvalid(ridx)
	}
}

func (bm *Bitmap) SetValidUnsafe(ridx uint64) {
	eIdx, pos := GetEntryIndex(ridx)
	bm.Bits[eIdx] |= uint64(1) << pos
}

// SetInvalid materializes the entries on the first invalid row.
func (bm *Bitmap) SetInvalid(ridx uint64) {
	if bm.Invalid() {
		bm.Init(max(VectorSize(), int(ridx)+1))
	} else if int(ridx) >= len(bm.Bits)*BitsPerEntry {
		bm.Resize(len(bm.Bits)*BitsPerEntry, int(ridx)+1)
	}
	bm.EnsureWritable()
	bm.SetInvalidUnsafe(ridx)
}

func (bm *Bitmap) SetInvalidUnsafe(ridx uint64) {
	eIdx, pos := GetEntryIndex(ridx)
	bm.Bits[eIdx] &= ^(uint64(1) << pos)
}

func (bm *Bitmap) Reset() {
	bm.Bits = nil
	bm.shared = false
}

func EntryCount(cnt int) int {
	return (cnt + BitsPerEntry - 1) / BitsPerEntry
}

func SizeInBytes(cnt int) int {
	return EntryCount(cnt) * EntryBytes
}

func (bm *Bitmap) Resize(old int, new int) {
	if new <= old {
		return
	}
	if bm.Bits != nil {
		ncnt := EntryCount(new)
		ocnt := min(EntryCount(old), len(bm.Bits))
		if ncnt <= len(bm.Bits) {
			return
		}
		newData := make([]uint64, ncnt)
		copy(newData, bm.Bits[:ocnt])
		for i := ocnt; i < ncnt; i++ {
			newData[i] = FullEntry
		}
		bm.Bits = newData
		bm.shared = false
	} else {
		bm.Init(new)
	}
}

func (bm *Bitmap) PrepareSpace(cnt int) {
	if bm.Invalid() || len(bm.Bits) < EntryCount(cnt) {
		bm.Init(max(cnt, len(bm.Bits)*BitsPerEntry))
		return
	}
	bm.EnsureWritable()
}

// SetAllInvalid clears the first cnt rows. The unused high bits of the
// last entry are cleared as well.
func (bm *Bitmap) SetAllInvalid(cnt int) {
	bm.PrepareSpace(cnt)
	if cnt == 0 {
		return
	}
	eCnt := EntryCount(cnt)
	for i := 0; i < eCnt; i++ {
		bm.Bits[i] = 0
	}
}

// SetAllValid sets the first cnt rows. The unused high bits of the
// last entry are set as well.
func (bm *Bitmap) SetAllValid(cnt int) {
	bm.PrepareSpace(cnt)
	if cnt == 0 {
		return
	}
	eCnt := EntryCount(cnt)
	for i := 0; i < eCnt; i++ {
		bm.Bits[i] = FullEntry
	}
}

// CountValid returns the number of valid rows among the first count rows.
func (bm *Bitmap) CountValid(count int) int {
	if bm.AllValid() || count == 0 {
		return count
	}
	valid := 0
	eCnt := EntryCount(count)
	if eCnt > len(bm.Bits) {
		valid += count - len(bm.Bits)*BitsPerEntry
		count = len(bm.Bits) * BitsPerEntry
		eCnt = len(bm.Bits)
	}
	rest := count % BitsPerEntry
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		e := bm.Bits[eIdx]
		if eIdx == eCnt-1 && rest != 0 {
			e &= ^(FullEntry << rest)
		}
		if AllValidInEntry(e) {
			valid += BitsPerEntry
			continue
		}
		for e != 0 {
			e &= e - 1
			valid++
		}
	}
	return valid
}

// CountInvalid is the complement of CountValid.
func (bm *Bitmap) CountInvalid(count int) int {
	return count - bm.CountValid(count)
}

func (bm *Bitmap) AllValid() bool {
	return bm.Invalid()
}

// CopyFrom gives bm a private copy of the first count rows of other.
func (bm *Bitmap) CopyFrom(other *Bitmap, count int) {
	if other.AllValid() {
		bm.Reset()
	} else {
		eCnt := min(EntryCount(count), len(other.Bits))
		bm.Bits = make([]uint64, max(eCnt, len(other.Bits)))
		for i := range bm.Bits {
			bm.Bits[i] = FullEntry
		}
		copy(bm.Bits, other.Bits[:eCnt])
		bm.shared = false
	}
}

func (bm *Bitmap) IsMaskSet() bool {
	return bm.Bits != nil
}

// Slice makes bm describe rows [sourceOffset, sourceOffset+count) of other.
func (bm *Bitmap) Slice(
	other *Bitmap,
	sourceOffset uint64,
	count uint64) {
	if other.AllValid() {
		bm.Reset()
		return
	}
	if sourceOffset == 0 {
		bm.ShareWith(other)
		return
	}
	newBm := &Bitmap{}
	newBm.Init(int(count))
	newBm.SliceInPlace(other, 0, sourceOffset, count)
	bm.Bits = newBm.Bits
	bm.shared = false
}

func (bm *Bitmap) SliceInPlace(
	other *Bitmap, targetOffset, sourceOffset, count uint64) {
	for i := uint64(0); i < count; i++ {
		bm.Set(targetOffset+i,
			other.RowIsValid(sourceOffset+i))
	}
}
