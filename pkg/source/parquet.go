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
	"fmt"
	"time"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqReader "github.com/xitongsys/parquet-go/reader"
	pqSource "github.com/xitongsys/parquet-go/source"
	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// ParquetReader reads leaf columns of a flat parquet file.
type ParquetReader struct {
	path     string
	opts     Options
	indice   []int
	pqFile   pqSource.ParquetFile
	pqReader *pqReader.ParquetReader
	numRows  int64
	readRows int64
}

func NewParquetReader(path string, opts Options) (*ParquetReader, error) {
	pqFile, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	reader, err := pqReader.NewParquetColumnReader(pqFile, 1)
	if err != nil {
		_ = pqFile.Close()
		return nil, err
	}
	rd := &ParquetReader{
		path:     path,
		opts:     opts,
		indice:   columnIndice(opts),
		pqFile:   pqFile,
		pqReader: reader,
		numRows:  reader.GetNumRows(),
	}
	colCnt := len(reader.SchemaHandler.ValueColumns)
	for _, idx := range rd.indice {
		if idx < 0 || idx >= colCnt {
			_ = rd.Close()
			return nil, fmt.Errorf("%w: %s has %d columns, need column %d",
				ErrColumnMismatch, path, colCnt, idx)
		}
	}
	return rd, nil
}

func (rd *ParquetReader) Types() []common.LType {
	return rd.opts.Types
}

// ColumnNames returns the paths of the leaf columns in the file.
func (rd *ParquetReader) ColumnNames() []string {
	return rd.pqReader.SchemaHandler.ValueColumns
}

func (rd *ParquetReader) Read(output *chunk.Chunk) error {
	maxCnt := min(int64(output.Cap()), rd.numRows-rd.readRows)
	if maxCnt <= 0 {
		output.SetCard(0)
		return nil
	}
	err := util.Inject(util.FAULTS_SCOPE_SOURCE, FaultRead)
	if err != nil {
		return err
	}
	rowCont := -1
	for j, idx := range rd.indice {
		values, _, _, err := rd.pqReader.ReadColumnByIndex(int64(idx), maxCnt)
		if err != nil {
			return err
		}
		if rowCont < 0 {
			rowCont = len(values)
		} else if len(values) != rowCont {
			return fmt.Errorf("%w: column %d has %d values, previous columns have %d",
				ErrColumnMismatch, idx, len(values), rowCont)
		}
		vec := output.Data[j]
		for i := 0; i < len(values); i++ {
			val, err := parquetColToValue(values[i], vec.Typ())
			if err != nil {
				return fmt.Errorf("%s row %d column %d: %w", rd.path, rd.readRows+int64(i), idx, err)
			}
			vec.SetValue(i, val)
		}
	}
	rowCont = max(rowCont, 0)
	rd.readRows += int64(rowCont)
	output.SetCard(rowCont)
	util.Debug("read parquet",
		zap.String("path", rd.path),
		zap.Int("rows", rowCont),
		zap.Int64("total", rd.readRows))
	return nil
}

func (rd *ParquetReader) Close() error {
	rd.pqReader.ReadStop()
	return rd.pqFile.Close()
}

func parquetColToValue(field any, lTyp common.LType) (*chunk.Value, error) {
	if field == nil {
		return chunk.NewNullValue(lTyp), nil
	}
	val := &chunk.Value{
		Typ: lTyp,
	}
	switch lTyp.Id {
	case common.LTID_BOOLEAN:
		b, ok := field.(bool)
		if !ok {
			return nil, badParquetField(field, lTyp)
		}
		val.Bool = b
	case common.LTID_DATE:
		days, ok := field.(int32)
		if !ok {
			return nil, badParquetField(field, lTyp)
		}
		d := time.Date(1970, 1, int(1+days), 0, 0, 0, 0, time.UTC)
		val.I64 = int64(d.Year())
		val.I64_1 = int64(d.Month())
		val.I64_2 = int64(d.Day())
	case common.LTID_TINYINT, common.LTID_SMALLINT, common.LTID_INTEGER, common.LTID_BIGINT:
		switch fVal := field.(type) {
		case int32:
			val.I64 = int64(fVal)
		case int64:
			val.I64 = fVal
		default:
			return nil, badParquetField(field, lTyp)
		}
	case common.LTID_UBIGINT:
		switch fVal := field.(type) {
		case int32:
			val.U64 = uint64(uint32(fVal))
		case int64:
			val.U64 = uint64(fVal)
		default:
			return nil, badParquetField(field, lTyp)
		}
	case common.LTID_FLOAT, common.LTID_DOUBLE:
		switch fVal := field.(type) {
		case float32:
			val.F64 = float64(fVal)
		case float64:
			val.F64 = fVal
		default:
			return nil, badParquetField(field, lTyp)
		}
	case common.LTID_VARCHAR:
		s, ok := field.(string)
		if !ok {
			return nil, badParquetField(field, lTyp)
		}
		val.Str = s
	case common.LTID_DECIMAL:
		var unscaled int64
		switch v := field.(type) {
		case int32:
			unscaled = int64(v)
		case int64:
			unscaled = v
		default:
			return nil, badParquetField(field, lTyp)
		}
		d, err := common.NewDecimal(unscaled, lTyp.Scale)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadField, err)
		}
		val.Dec = d
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, lTyp)
	}
	return val, nil
}

func badParquetField(field any, lTyp common.LType) error {
	return fmt.Errorf("%w: %T as %v", ErrBadField, field, lTyp)
}
