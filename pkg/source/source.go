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


package source

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

var (
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrColumnMismatch    = errors.New("column mismatch")
	ErrBadField          = errors.New("bad field")
)

// fault names in util.FAULTS_SCOPE_SOURCE
const (
	FaultOpen = "source.open"
	FaultRead = "source.read"
)

type Options struct {
	Format string
	//csv only
	Delimiter rune
	Header    bool
	//field text read as NULL. the empty field is always NULL
	//for non varchar columns.
	NullString string
	//file columns to read. nil reads the first len(Types) columns.
	Columns []int
	Types   []common.LType
}

// Reader fills chunks from a file. Read leaves output empty at the end
// of the input.
type Reader interface {
	Types() []common.LType
	Read(output *chunk.Chunk) error
	Close() error
}

func OptionsFromConfig(cfg *util.ScanOptions, typs []common.LType) Options {
	opts := Options{
		Format:    cfg.Format,
		Delimiter: ',',
		Header:    cfg.Header,
		Types:     typs,
	}
	if len(cfg.Delimiter) != 0 {
		opts.Delimiter = []rune(cfg.Delimiter)[0]
	}
	return opts
}

func Open(path string, opts Options) (Reader, error) {
	if len(opts.Types) == 0 {
		return nil, fmt.Errorf("%w: no column types", ErrColumnMismatch)
	}
	if opts.Columns != nil && len(opts.Columns) != len(opts.Types) {
		return nil, fmt.Errorf("%w: %d columns with %d types",
			ErrColumnMismatch, len(opts.Columns), len(opts.Types))
	}
	err := util.Inject(util.FAULTS_SCOPE_SOURCE, FaultOpen)
	if err != nil {
		return nil, err
	}
	var rd Reader
	switch opts.Format {
	case "csv":
		rd, err = NewCsvReader(path, opts)
	case "parquet":
		rd, err = NewParquetReader(path, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if err != nil {
		return nil, err
	}
	util.Info("open source",
		zap.String("path", path),
		zap.String("format", opts.Format),
		zap.Int("columns", len(opts.Types)))
	return rd, nil
}

// ReadAll reads the whole input into chunks of at most cap rows.
func ReadAll(rd Reader, cap int) ([]*chunk.Chunk, error) {
	var ret []*chunk.Chunk
	for {
		output := &chunk.Chunk{}
		output.Init(rd.Types(), cap)
		err := rd.Read(output)
		if err != nil {
			return nil, err
		}
		if output.Card() == 0 {
			return ret, nil
		}
		ret = append(ret, output)
	}
}

func columnIndice(opts Options) []int {
	if opts.Columns != nil {
		return opts.Columns
	}
	ret := make([]int, len(opts.Types))
	for i := range ret {
		ret[i] = i
	}
	return ret
}
