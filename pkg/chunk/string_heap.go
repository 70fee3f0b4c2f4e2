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
package chunk

import (
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

const (
	heapBlockSize = 4096
)

// StringHeap is a bump allocator for string bytes. Strings handed out
// stay valid for the lifetime of the heap.
type StringHeap struct {
	blocks [][]byte
	cur    []byte
	offset int
	size   int
}

func NewStringHeap() *StringHeap {
	return &StringHeap{}
}

// Alloc reserves n bytes.
func (heap *StringHeap) Alloc(n int) []byte {
	if n > heapBlockSize/2 {
		//large strings get a block of their own
		block := make([]byte, n)
		heap.blocks = append(heap.blocks, block)
		heap.size += n
		return block
	}
	if heap.cur == nil || heap.offset+n > len(heap.cur) {
		heap.cur = make([]byte, heapBlockSize)
		heap.blocks = append(heap.blocks, heap.cur)
		heap.offset = 0
	}
	ret := heap.cur[heap.offset : heap.offset+n : heap.offset+n]
	heap.offset += n
	heap.size += n
	return ret
}

func (heap *StringHeap) AddString(s string) common.String {
	return heap.AddBlob(util.UnsafeStringToBytes(s))
}

// AddBlob copies data into the heap unless it fits inline.
func (heap *StringHeap) AddBlob(data []byte) common.String {
	if len(data) <= common.StringInlineLength {
		return common.NewInlineString(data)
	}
	dst := heap.Alloc(len(data))
	copy(dst, data)
	return common.NewPointerString(util.BytesSliceToPointer(dst), len(dst))
}

// EmptyString reserves a string of n bytes. Write its bytes through
// DataSlice and call Finalize.
func (heap *StringHeap) EmptyString(n int) common.String {
	if n <= common.StringInlineLength {
		return common.NewInlineString(make([]byte, n))
	}
	dst := heap.Alloc(n)
	return common.NewPointerString(util.BytesSliceToPointer(dst), n)
}

func (heap *StringHeap) SizeInBytes() int {
	return heap.size
}

func (heap *StringHeap) Reset() {
	heap.blocks = nil
	heap.cur = nil
	heap.offset = 0
	heap.size = 0
}
