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

package storage

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/util"
)

var (
	ErrOutOfMemory  = errors.New("out of memory")
	ErrBlockRemoved = errors.New("block removed")
)

type Allocator struct {
	bytes util.BytesAllocator
}

func NewAllocator() *Allocator {
	return &Allocator{bytes: util.GAlloc}
}

func (alloc *Allocator) AllocateData(sz uint64) []byte {
	return alloc.bytes.Alloc(int(sz))
}

func (alloc *Allocator) FreeData(data []byte) {
	alloc.bytes.Free(data)
}

type FileBufferType int

const (
	MANAGED_BUFFER FileBufferType = 1
	TINY_BUFFER    FileBufferType = 2
)

// FileBuffer is the memory of a loaded block.
type FileBuffer struct {
	_bufferAlloc *Allocator
	_typ         FileBufferType
	_buffer      []byte
}

func NewFileBuffer(
	alloc *Allocator,
	bufferType FileBufferType,
	sz uint64) *FileBuffer {
	ret := &FileBuffer{
		_bufferAlloc: alloc,
		_typ:         bufferType,
	}
	if sz > 0 {
		ret.Resize(sz)
	}
	return ret
}

func (fbuf *FileBuffer) Close() {
	if fbuf == nil || fbuf._buffer == nil {
		return
	}
	fbuf._bufferAlloc.FreeData(fbuf._buffer)
	fbuf._buffer = nil
}

func (fbuf *FileBuffer) Resize(nsz uint64) {
	old := fbuf._buffer
	fbuf._buffer = fbuf._bufferAlloc.AllocateData(nsz)
	if old != nil {
		copy(fbuf._buffer, old)
		fbuf._bufferAlloc.FreeData(old)
	}
}

func (fbuf *FileBuffer) Size() uint64 {
	return uint64(len(fbuf._buffer))
}

func (fbuf *FileBuffer) Clear() {
	clear(fbuf._buffer)
}

func (fbuf *FileBuffer) Write(handle *os.File, loc uint64) error {
	_, err := handle.WriteAt(fbuf._buffer, int64(loc))
	return err
}

func (fbuf *FileBuffer) Read(handle *os.File, loc uint64) error {
	_, err := handle.ReadAt(fbuf._buffer, int64(loc))
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// BufferManager hands out pinned blocks under a memory limit. When the
// limit is reached, unpinned blocks are evicted least recently used
// first.
type BufferManager struct {
	_tempDir string
	_tempId  atomic.Uint64
	_clock   atomic.Uint64
	_limit   int64
	_used    atomic.Int64
	_alloc   *Allocator

	_lock   sync.Mutex
	_blocks map[BlockID]*BlockHandle
}

func NewBufferManager(opts util.StorageOptions) *BufferManager {
	ret := &BufferManager{
		_tempDir: opts.TempDir,
		_limit:   opts.MemoryLimit,
		_alloc:   NewAllocator(),
		_blocks:  make(map[BlockID]*BlockHandle),
	}
	return ret
}

func (mgr *BufferManager) Used() int64 {
	return mgr._used.Load()
}

func (mgr *BufferManager) Limit() int64 {
	return mgr._limit
}

func (mgr *BufferManager) BlockCount() int {
	mgr._lock.Lock()
	defer mgr._lock.Unlock()
	return len(mgr._blocks)
}

func (mgr *BufferManager) tempPath(id BlockID) string {
	return filepath.Join(mgr._tempDir, fmt.Sprintf("vec_%d.block", id))
}

// reserve accounts sz bytes, evicting unpinned blocks if needed.
// except is never evicted.
func (mgr *BufferManager) reserve(sz int64, except *BlockHandle) error {
	if mgr._used.Add(sz) <= mgr._limit {
		return nil
	}
	mgr._lock.Lock()
	candidates := make([]*BlockHandle, 0, len(mgr._blocks))
	for _, block := range mgr._blocks {
		if block != except {
			candidates = append(candidates, block)
		}
	}
	mgr._lock.Unlock()
	slices.SortFunc(candidates, func(a, b *BlockHandle) int {
		return cmp.Compare(a._lastUse.Load(), b._lastUse.Load())
	})
	for _, block := range candidates {
		if mgr._used.Load() <= mgr._limit {
			break
		}
		block.Lock()
		if block.CanUnload() {
			err := block.unload()
			if err != nil {
				block.Unlock()
				mgr._used.Add(-sz)
				return err
			}
			mgr._used.Add(-int64(block._size))
		}
		block.Unlock()
	}
	if mgr._used.Load() > mgr._limit {
		mgr._used.Add(-sz)
		return fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrOutOfMemory, sz, mgr._used.Load(), mgr._limit)
	}
	return nil
}

func (mgr *BufferManager) release(sz int64) {
	mgr._used.Add(-sz)
}

// RegisterMemory creates a loaded, unpinned block of sz bytes.
func (mgr *BufferManager) RegisterMemory(
	sz uint64,
	canDestroy bool,
) (*BlockHandle, error) {
	typ := MANAGED_BUFFER
	if sz < uint64(util.DefaultVectorSize) {
		typ = TINY_BUFFER
	}
	err := mgr.reserve(int64(sz), nil)
	if err != nil {
		return nil, err
	}
	buffer := NewFileBuffer(mgr._alloc, typ, sz)
	id := BlockID(mgr._tempId.Add(1))
	block := NewBlockHandle(mgr, id, buffer, canDestroy)
	block._lastUse.Store(mgr._clock.Add(1))
	mgr._lock.Lock()
	mgr._blocks[id] = block
	mgr._lock.Unlock()
	return block, nil
}

// Allocate registers a block of sz bytes and pins it.
func (mgr *BufferManager) Allocate(
	sz uint64,
	canDestroy bool,
) (*BufferHandle, *BlockHandle, error) {
	block, err := mgr.RegisterMemory(sz, canDestroy)
	if err != nil {
		return nil, nil, err
	}
	handle, err := mgr.Pin(block)
	if err != nil {
		mgr.Destroy(block)
		return nil, nil, err
	}
	return handle, block, nil
}

// ReAllocate resizes a pinned block. The content up to the smaller
// size is kept.
func (mgr *BufferManager) ReAllocate(
	block *BlockHandle,
	sz uint64,
) error {
	util.AssertFunc(block._readers.Load() > 0)
	block.Lock()
	delta := int64(sz) - int64(block._size)
	block.Unlock()
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		err := mgr.reserve(delta, block)
		if err != nil {
			return err
		}
	} else {
		mgr.release(-delta)
	}
	block.Lock()
	defer block.Unlock()
	util.AssertFunc(block.State() == LOADED)
	block._buffer.Resize(sz)
	block._size = sz
	return nil
}

// Pin loads the block if needed and returns a handle on its memory.
// A destroyable block that was evicted comes back zeroed.
func (mgr *BufferManager) Pin(block *BlockHandle) (*BufferHandle, error) {
	mgr._lock.Lock()
	_, ok := mgr._blocks[block._blockId]
	mgr._lock.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBlockRemoved, block._blockId)
	}
	block.Lock()
	if block.State() == UNLOADED {
		//reserve without the block lock, eviction takes other block locks
		block._readers.Add(1)
		block.Unlock()
		err := mgr.reserve(int64(block._size), block)
		block.Lock()
		if err != nil {
			block._readers.Add(-1)
			block.Unlock()
			return nil, err
		}
		if block.State() == UNLOADED {
			err = block.load()
			if err != nil {
				block._readers.Add(-1)
				block.Unlock()
				mgr.release(int64(block._size))
				return nil, err
			}
		} else {
			mgr.release(int64(block._size))
		}
	} else {
		block._readers.Add(1)
	}
	block._lastUse.Store(mgr._clock.Add(1))
	node := block._buffer
	block.Unlock()
	return &BufferHandle{
		_handle: block,
		_node:   node,
	}, nil
}

func (mgr *BufferManager) Unpin(block *BlockHandle) {
	block.Lock()
	defer block.Unlock()
	util.AssertFunc(block._readers.Load() > 0)
	block._readers.Add(-1)
}

// Destroy frees the block and its spilled copy.
func (mgr *BufferManager) Destroy(block *BlockHandle) {
	mgr._lock.Lock()
	delete(mgr._blocks, block._blockId)
	mgr._lock.Unlock()
	block.Lock()
	defer block.Unlock()
	if block.State() == LOADED {
		block._buffer.Close()
		block._buffer = nil
		block._state.Store(int32(UNLOADED))
		mgr.release(int64(block._size))
	}
	block.removeTemp()
}

// Close destroys every block.
func (mgr *BufferManager) Close() {
	mgr._lock.Lock()
	blocks := make([]*BlockHandle, 0, len(mgr._blocks))
	for _, block := range mgr._blocks {
		blocks = append(blocks, block)
	}
	mgr._lock.Unlock()
	for _, block := range blocks {
		mgr.Destroy(block)
	}
	util.Debug("buffer manager closed", zap.Int("blocks", len(blocks)))
}

// BufferHandle is a pin on a block. It keeps the block in memory until
// Release.
type BufferHandle struct {
	_handle *BlockHandle
	_node   *FileBuffer
	_once   sync.Once
}

func (handle *BufferHandle) Block() *BlockHandle {
	return handle._handle
}

func (handle *BufferHandle) Data() []byte {
	return handle._node._buffer
}

func (handle *BufferHandle) Ptr() unsafe.Pointer {
	return util.BytesSliceToPointer(handle._node._buffer)
}

func (handle *BufferHandle) Release() {
	handle._once.Do(func() {
		if handle._handle == nil {
			return
		}
		handle._handle._mgr.Unpin(handle._handle)
		handle._handle = nil
		handle._node = nil
	})
}
