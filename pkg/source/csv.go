package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

type CsvReader struct {
	path     string
	opts     Options
	indice   []int
	dataFile *os.File
	reader   *csv.Reader
	line     int
}

func NewCsvReader(path string, opts Options) (*CsvReader, error) {
	dataFile, err := os.OpenFile(path, os.O_RDONLY, 0755)
	if err != nil {
		return nil, err
	}
	comma := opts.Delimiter
	if comma == 0 {
		comma = ','
	}
	reader := csv.NewReader(dataFile)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	rd := &CsvReader{
		path:     path,
		opts:     opts,
		indice:   columnIndice(opts),
		dataFile: dataFile,
		reader:   reader,
	}
	if opts.Header {
		_, err = reader.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			_ = dataFile.Close()
			return nil, err
		}
		rd.line++
	}
	return rd, nil
}

func (rd *CsvReader) Types() []common.LType {
	return rd.opts.Types
}

func (rd *CsvReader) Read(output *chunk.Chunk) error {
	maxCnt := output.Cap()
	rowCont := 0
	for i := 0; i < maxCnt; i++ {
		err := util.Inject(util.FAULTS_SCOPE_SOURCE, FaultRead)
		if err != nil {
			return err
		}
		line, err := rd.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		rd.line++
		for j, idx := range rd.indice {
			if idx >= len(line) {
				return fmt.Errorf("%w: %s line %d has %d fields, need column %d",
					ErrColumnMismatch, rd.path, rd.line, len(line), idx)
			}
			vec := output.Data[j]
			val, err := fieldToValue(line[idx], vec.Typ(), rd.opts.NullString)
			if err != nil {
				return fmt.Errorf("%s line %d column %d: %w", rd.path, rd.line, idx, err)
			}
			vec.SetValue(i, val)
		}
		rowCont++
	}
	output.SetCard(rowCont)
	util.Debug("read csv",
		zap.String("path", rd.path),
		zap.Int("rows", rowCont))
	return nil
}

func (rd *CsvReader) Close() error {
	return rd.dataFile.Close()
}

func fieldToValue(field string, lTyp common.LType, nullString string) (*chunk.Value, error) {
	if (nullString != "" && field == nullString) ||
		(field == "" && lTyp.Id != common.LTID_VARCHAR) {
		return chunk.NewNullValue(lTyp), nil
	}
	var err error
	val := &chunk.Value{
		Typ: lTyp,
	}
	switch lTyp.Id {
	case common.LTID_BOOLEAN:
		val.Bool, err = strconv.ParseBool(field)
	case common.LTID_TINYINT:
		val.I64, err = strconv.ParseInt(field, 10, 8)
	case common.LTID_SMALLINT:
		val.I64, err = strconv.ParseInt(field, 10, 16)
	case common.LTID_INTEGER:
		val.I64, err = strconv.ParseInt(field, 10, 32)
	case common.LTID_BIGINT:
		val.I64, err = strconv.ParseInt(field, 10, 64)
	case common.LTID_UBIGINT:
		val.U64, err = strconv.ParseUint(field, 10, 64)
	case common.LTID_FLOAT:
		val.F64, err = strconv.ParseFloat(field, 32)
	case common.LTID_DOUBLE:
		val.F64, err = strconv.ParseFloat(field, 64)
	case common.LTID_DATE:
		var d time.Time
		d, err = time.Parse(time.DateOnly, field)
		val.I64 = int64(d.Year())
		val.I64_1 = int64(d.Month())
		val.I64_2 = int64(d.Day())
	case common.LTID_DECIMAL:
		val.Dec, err = common.ParseDecimal(field)
	case common.LTID_VARCHAR:
		val.Str = field
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, lTyp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q as %v: %w", ErrBadField, field, lTyp, err)
	}
	return val, nil
}
