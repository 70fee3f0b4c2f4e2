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
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/util"
)

type BlockID uint64

type BlockState int32

const (
	UNLOADED BlockState = 0
	LOADED   BlockState = 1
)

func (state BlockState) String() string {
	switch state {
	case UNLOADED:
		return "unloaded"
	case LOADED:
		return "loaded"
	}
	return "unknown"
}

// BlockHandle is one allocation of the buffer manager. While readers > 0
// the block stays in memory. An unpinned block may be evicted: a
// destroyable block loses its content, any other block is written to
// the temp directory and read back on the next Pin.
type BlockHandle struct {
	sync.Mutex
	_mgr        *BufferManager
	_state      atomic.Int32
	_readers    atomic.Int32
	_blockId    BlockID
	_buffer     *FileBuffer
	_size       uint64
	_canDestroy bool
	_spilled    bool
	_lastUse    atomic.Uint64
}

func NewBlockHandle(
	mgr *BufferManager,
	blockId BlockID,
	buffer *FileBuffer,
	canDestroy bool,
) *BlockHandle {
	ret := &BlockHandle{
		_mgr:        mgr,
		_blockId:    blockId,
		_buffer:     buffer,
		_size:       buffer.Size(),
		_canDestroy: canDestroy,
	}
	ret._state.Store(int32(LOADED))
	return ret
}

func (handle *BlockHandle) ID() BlockID {
	return handle._blockId
}

func (handle *BlockHandle) State() BlockState {
	return BlockState(handle._state.Load())
}

func (handle *BlockHandle) Readers() int {
	return int(handle._readers.Load())
}

func (handle *BlockHandle) Size() uint64 {
	return handle._size
}

func (handle *BlockHandle) CanDestroy() bool {
	return handle._canDestroy
}

// load brings the block into memory. Caller holds the lock and has
// reserved the memory.
func (handle *BlockHandle) load() error {
	if handle.State() == LOADED {
		return nil
	}
	handle._buffer = NewFileBuffer(handle._mgr._alloc, MANAGED_BUFFER, handle._size)
	if handle._spilled {
		err := handle.readTemp()
		if err != nil {
			handle._buffer.Close()
			handle._buffer = nil
			return err
		}
	}
	handle._state.Store(int32(LOADED))
	return nil
}

func (handle *BlockHandle) CanUnload() bool {
	if handle.State() == UNLOADED {
		return false
	}
	if handle._readers.Load() > 0 {
		return false
	}
	if !handle._canDestroy && handle._mgr._tempDir == "" {
		return false
	}
	return true
}

// unload writes the block out if needed and frees its memory.
// Caller holds the lock.
func (handle *BlockHandle) unload() error {
	util.AssertFunc(handle.CanUnload())
	if !handle._canDestroy {
		err := handle.writeTemp()
		if err != nil {
			return err
		}
		handle._spilled = true
	}
	handle._buffer.Close()
	handle._buffer = nil
	handle._state.Store(int32(UNLOADED))
	util.Debug("unload block",
		zap.Uint64("id", uint64(handle._blockId)),
		zap.Uint64("size", handle._size),
		zap.Bool("spilled", handle._spilled))
	return nil
}

func (handle *BlockHandle) tempPath() string {
	return handle._mgr.tempPath(handle._blockId)
}

func (handle *BlockHandle) writeTemp() error {
	err := util.Inject(util.FAULTS_SCOPE_STORAGE, "spill")
	if err != nil {
		return err
	}
	file, err := os.OpenFile(handle.tempPath(), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("spill block %d: %w", handle._blockId, err)
	}
	defer file.Close()
	err = handle._buffer.Write(file, 0)
	if err != nil {
		return fmt.Errorf("spill block %d: %w", handle._blockId, err)
	}
	return nil
}

func (handle *BlockHandle) readTemp() error {
	file, err := os.Open(handle.tempPath())
	if err != nil {
		return fmt.Errorf("reload block %d: %w", handle._blockId, err)
	}
	defer file.Close()
	err = handle._buffer.Read(file, 0)
	if err != nil {
		return fmt.Errorf("reload block %d: %w", handle._blockId, err)
	}
	return nil
}

func (handle *BlockHandle) removeTemp() {
	if !handle._spilled {
		return
	}
	err := os.Remove(handle.tempPath())
	if err != nil && !os.IsNotExist(err) {
		util.Warn("remove spilled block",
			zap.Uint64("id", uint64(handle._blockId)),
			zap.Error(err))
	}
	handle._spilled = false
}
