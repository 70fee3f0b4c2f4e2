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
package common

import (
	"bytes"
	"unsafe"

	"github.com/daviszhen/vec/pkg/util"
)

const (
	StringInlineLength = 12
	StringPrefixLength = 4
)

// String is the fixed-width element of a VARCHAR vector.
//
// Strings of at most StringInlineLength bytes live in data. Longer ones
// keep their first StringPrefixLength bytes in data and point at the
// full bytes through ptr. The pointee is owned by a string heap or by
// the caller, never by the String itself.
type String struct {
	Len  uint32
	data [StringInlineLength]byte
	ptr  unsafe.Pointer
}

func NewInlineString(b []byte) String {
	util.AssertFunc(len(b) <= StringInlineLength)
	s := String{Len: uint32(len(b))}
	copy(s.data[:], b)
	return s
}

// NewPointerString refers to n bytes at ptr. The caller keeps them alive.
func NewPointerString(ptr unsafe.Pointer, n int) String {
	if n <= StringInlineLength {
		return NewInlineString(util.PointerToSlice[byte](ptr, n))
	}
	s := String{Len: uint32(n), ptr: ptr}
	copy(s.data[:StringPrefixLength], util.PointerToSlice[byte](ptr, StringPrefixLength))
	return s
}

// StringFromBytes refers to b without copying unless b fits inline.
func StringFromBytes(b []byte) String {
	if len(b) <= StringInlineLength {
		return NewInlineString(b)
	}
	return NewPointerString(util.BytesSliceToPointer(b), len(b))
}

func StringFromGo(s string) String {
	return StringFromBytes([]byte(s))
}

func (s *String) IsInlined() bool {
	return s.Len <= StringInlineLength
}

func (s *String) DataSlice() []byte {
	if s.IsInlined() {
		return s.data[:s.Len]
	}
	return util.PointerToSlice[byte](s.ptr, int(s.Len))
}

func (s *String) DataPtr() unsafe.Pointer {
	if s.IsInlined() {
		return unsafe.Pointer(&s.data[0])
	}
	return s.ptr
}

func (s *String) Prefix() []byte {
	return s.data[:min(StringPrefixLength, int(s.Len))]
}

// Finalize refreshes the prefix after the bytes behind a
// reserved string were written.
func (s *String) Finalize() {
	if !s.IsInlined() {
		copy(s.data[:StringPrefixLength], util.PointerToSlice[byte](s.ptr, StringPrefixLength))
	}
}

func (s *String) String() string {
	return string(s.DataSlice())
}

func (s *String) Equal(o *String) bool {
	if s.Len != o.Len {
		return false
	}
	if !bytes.Equal(s.Prefix(), o.Prefix()) {
		return false
	}
	return bytes.Equal(s.DataSlice(), o.DataSlice())
}

func (s *String) Less(o *String) bool {
	return s.Compare(o) < 0
}

func (s *String) Compare(o *String) int {
	ret := bytes.Compare(s.Prefix(), o.Prefix())
	if ret != 0 && len(s.Prefix()) == StringPrefixLength && len(o.Prefix()) == StringPrefixLength {
		return ret
	}
	return bytes.Compare(s.DataSlice(), o.DataSlice())
}

func (s *String) Length() int {
	return int(s.Len)
}

func (s String) NullLen() int {
	return 0
}

func WriteString(val String, serial util.Serialize) error {
	return util.WriteBytes(val.DataSlice(), serial)
}

// ReadString reads a string written by WriteString. Long strings
// point into freshly allocated memory.
func ReadString(val *String, deserial util.Deserialize) error {
	data, err := util.ReadBytes(deserial)
	if err != nil {
		return err
	}
	*val = StringFromBytes(data)
	return nil
}
