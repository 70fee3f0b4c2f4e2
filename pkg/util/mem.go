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

import "sync/atomic"

type BytesAllocator interface {
	Alloc(sz int) []byte
	Free([]byte)
}

// DefaultAllocator hands out zeroed Go memory and tracks the bytes
// currently outstanding.
type DefaultAllocator struct {
	inUse atomic.Int64
}

func (alloc *DefaultAllocator) Alloc(sz int) []byte {
	alloc.inUse.Add(int64(sz))
	return make([]byte, sz)
}

func (alloc *DefaultAllocator) Free(bytes []byte) {
	alloc.inUse.Add(-int64(len(bytes)))
}

func (alloc *DefaultAllocator) InUse() int64 {
	return alloc.inUse.Load()
}

var GAlloc BytesAllocator = &DefaultAllocator{}
