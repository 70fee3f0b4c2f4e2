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
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"unsafe"
)

const (
	// DefaultVectorSize is the row capacity of a standard vector.
	// It must stay a power of two.
	DefaultVectorSize = 1024
)

var vectorSize atomic.Int64

// VectorSize is the row capacity internal vectors, masks and selections
// are sized for. It is DefaultVectorSize until SetVectorSize changes it.
func VectorSize() int {
	if n := vectorSize.Load(); n > 0 {
		return int(n)
	}
	return DefaultVectorSize
}

// SetVectorSize changes VectorSize. n must be a power of two and at
// least BitsPerEntry.
func SetVectorSize(n int) {
	AssertFunc(n >= BitsPerEntry && IsPowerOfTwo(uint64(n)))
	vectorSize.Store(int64(n))
}

func AlignValue8(value int) int {
	return (value + 7) & (^7)
}

func AssertFunc(b bool) {
	if !b {
		panic("assertion failed")
	}
}

// AssertRestrict panics in debug builds when the byte ranges
// [a, a+aLen) and [b, b+bLen) overlap.
func AssertRestrict(a unsafe.Pointer, aLen int, b unsafe.Pointer, bLen int) {
	if !DebugMode || aLen == 0 || bLen == 0 || a == nil || b == nil {
		return
	}
	aStart, bStart := uintptr(a), uintptr(b)
	if aStart < bStart+uintptr(bLen) && bStart < aStart+uintptr(aLen) {
		panic("restrict violation: result overlaps input")
	}
}

func FileIsValid(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !stat.IsDir()
}

// ConvertPanicError turns a recovered panic into an error carrying the
// stack of the panicking goroutine.
func ConvertPanicError(v interface{}) error {
	return fmt.Errorf("panic %v: %v", v, Callers(3))
}

type Stack []uintptr

// Callers makes the depth customizable.
func Callers(depth int) *Stack {
	const numFrames = 32
	var pcs [numFrames]uintptr
	n := runtime.Callers(2+depth, pcs[:])
	var st Stack = pcs[0:n]
	return &st
}

func (st *Stack) String() string {
	sb := strings.Builder{}
	frames := runtime.CallersFrames(*st)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "\n\t%s %s:%d", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

func NextPowerOfTwo(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}

func IsPowerOfTwo(v uint64) bool {
	return v != 0 && (v&(v-1)) == 0
}

type Serialize interface {
	WriteData(buffer []byte, len int) error
	Close() error
}

type Deserialize interface {
	ReadData(buffer []byte, len int) error
	Close() error
}

func UnsafeStringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
