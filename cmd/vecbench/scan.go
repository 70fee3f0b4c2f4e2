package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/source"
	"github.com/daviszhen/vec/pkg/util"
)

// RunScan reads the file named by cfg.Scan into chunks. With
// PrintResult the rows go to w as tab separated text, with tree the
// encoding of the first chunk is printed first. With SavePath every
// chunk is also serialized into that file.
func RunScan(cfg *util.Config, typList string, tree bool, w io.Writer) (rows int, err error) {
	util.SetVectorSize(cfg.VectorSize)
	typs, err := source.ParseTypes(typList)
	if err != nil {
		return 0, err
	}
	rd, err := source.Open(cfg.Scan.Path, source.OptionsFromConfig(&cfg.Scan, typs))
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil {
			util.Warn("close source", zap.String("path", cfg.Scan.Path), zap.Error(cerr))
		}
	}()

	var serial *util.FileSerialize
	if cfg.Scan.SavePath != "" {
		serial, err = util.NewFileSerialize(cfg.Scan.SavePath)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := serial.Close(); err == nil {
				err = cerr
			}
		}()
	}

	output := &chunk.Chunk{}
	output.Init(typs, cfg.VectorSize)
	for cfg.Scan.MaxRows <= 0 || rows < cfg.Scan.MaxRows {
		output.Reset()
		err = rd.Read(output)
		if err != nil {
			return rows, err
		}
		if output.Card() == 0 {
			break
		}
		if cfg.Scan.MaxRows > 0 && rows+output.Card() > cfg.Scan.MaxRows {
			output.SetCard(cfg.Scan.MaxRows - rows)
		}
		if tree && rows == 0 {
			if _, err = fmt.Fprintln(w, output.Tree().String()); err != nil {
				return rows, err
			}
		}
		if cfg.Scan.PrintResult {
			if err = output.SaveToFile(w); err != nil {
				return rows, err
			}
		}
		if serial != nil {
			if err = output.Serialize(serial); err != nil {
				return rows, err
			}
		}
		rows += output.Card()
	}
	util.Info("scan done",
		zap.String("path", cfg.Scan.Path),
		zap.Int("rows", rows))
	return rows, nil
}
