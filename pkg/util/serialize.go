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
	"bufio"
	"bytes"
	"io"
	"os"
	"unsafe"
)

func Write[T any](value T, serial Serialize) error {
	cnt := int(unsafe.Sizeof(value))
	buf := PointerToSlice[byte](unsafe.Pointer(&value), cnt)
	return serial.WriteData(buf, cnt)
}

func WriteString(s string, serial Serialize) error {
	err := Write[uint32](uint32(len(s)), serial)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		return serial.WriteData(UnsafeStringToBytes(s), len(s))
	}
	return nil
}

func WriteBytes(data []byte, serial Serialize) error {
	err := Write[uint32](uint32(len(data)), serial)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		return serial.WriteData(data, len(data))
	}
	return nil
}

func ReadString(deserial Deserialize) (string, error) {
	var l uint32
	err := Read[uint32](&l, deserial)
	if err != nil {
		return "", err
	}
	buf := make([]byte, l)
	err = deserial.ReadData(buf, int(l))
	if err != nil {
		return "", err
	}
	return string(buf), err
}

func Read[T any](value *T, deserial Deserialize) error {
	cnt := int(unsafe.Sizeof(*value))
	buf := PointerToSlice[byte](unsafe.Pointer(value), cnt)
	err := deserial.ReadData(buf, cnt)
	if err != nil {
		return err
	}
	return nil
}

func ReadBytes(deserial Deserialize) ([]byte, error) {
	var l uint32
	err := Read[uint32](&l, deserial)
	if err != nil {
		return nil, err
	}
	if l == 0 {
		return nil, nil
	}
	data := make([]byte, l)
	err = deserial.ReadData(data, int(l))
	if err != nil {
		return nil, err
	}
	return data, nil
}

var _ Serialize = new(FileSerialize)

// FileSerialize writes buffered into a new file.
type FileSerialize struct {
	file *os.File
	w    *bufio.Writer
}

func NewFileSerialize(name string) (*FileSerialize, error) {
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &FileSerialize{file: file, w: bufio.NewWriter(file)}, nil
}

func (serial *FileSerialize) WriteData(buffer []byte, len int) error {
	_, err := serial.w.Write(buffer[:len])
	return err
}

// Close flushes and syncs the file. The file is closed even when
// flushing fails.
func (serial *FileSerialize) Close() error {
	err := serial.w.Flush()
	if err == nil {
		err = serial.file.Sync()
	}
	cerr := serial.file.Close()
	if err != nil {
		return err
	}
	return cerr
}

var _ Deserialize = new(FileDeserialize)

type FileDeserialize struct {
	file *os.File
	r    *bufio.Reader
}

func NewFileDeserialize(name string) (*FileDeserialize, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &FileDeserialize{file: file, r: bufio.NewReader(file)}, nil
}

// ReadData fills buffer[:len]. A partial read gives io.ErrUnexpectedEOF.
func (deserial *FileDeserialize) ReadData(buffer []byte, len int) error {
	_, err := io.ReadFull(deserial.r, buffer[:len])
	return err
}

func (deserial *FileDeserialize) Close() error {
	return deserial.file.Close()
}

var _ Serialize = new(BufferSerialize)

// BufferSerialize writes into memory.
type BufferSerialize struct {
	bytes.Buffer
}

func (serial *BufferSerialize) WriteData(buffer []byte, len int) error {
	_, err := serial.Write(buffer[:len])
	return err
}

func (serial *BufferSerialize) Close() error {
	return nil
}

var _ Deserialize = new(BufferDeserialize)

type BufferDeserialize struct {
	reader *bytes.Reader
}

func NewBufferDeserialize(data []byte) *BufferDeserialize {
	return &BufferDeserialize{reader: bytes.NewReader(data)}
}

func (deserial *BufferDeserialize) ReadData(buffer []byte, len int) error {
	_, err := io.ReadFull(deserial.reader, buffer[:len])
	return err
}

func (deserial *BufferDeserialize) Close() error {
	return nil
}
