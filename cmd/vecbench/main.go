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


package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRootFlags()
	initBenchCmd()
	initScanCmd()
}

var benchCfg = util.DefaultConfig()

///root cmd

var info = "vecbench drives vectors and chunks through the executors"
var RootCmd = &cobra.Command{
	Use:          "vecbench",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initCommonCfg()
		err := benchCfg.Validate()
		if err != nil {
			return err
		}
		util.SetVectorSize(benchCfg.VectorSize)
		return util.InitLogger(benchCfg.Log.Level, benchCfg.Log.Development)
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use vecbench --help or -h")
	},
}

var cfgFile string

func initRootFlags() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file. default: vecbench.toml in . or etc/")
	flags.Int("vector_size", util.DefaultVectorSize, "rows per chunk. a power of two >= 64")
	flags.String("log_level", "info", "debug, info, warn, error")
	viper.BindPFlag("vectorSize", flags.Lookup("vector_size"))
	viper.BindPFlag("log.level", flags.Lookup("log_level"))
}

func initCommonCfg() {
	benchCfg.VectorSize = viper.GetInt("vectorSize")
	benchCfg.Log.Level = viper.GetString("log.level")
	benchCfg.Log.Development = viper.GetBool("log.development")
	benchCfg.Storage.MemoryLimit = viper.GetInt64("storage.memoryLimit")
	benchCfg.Storage.TempDir = viper.GetString("storage.tempDir")
}

//bench cmd

var benchInfo = "run random chunks through scalar, select and aggregate functions"
var benchSpill bool
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: benchInfo,
	Long:  benchInfo,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = util.ConvertPanicError(rec)
			}
		}()
		initBenchCfg()
		if err = benchCfg.Validate(); err != nil {
			return err
		}
		res, err := RunBench(cmd.Context(), benchCfg, benchSpill)
		if err != nil {
			return err
		}
		return res.Print(cmd.OutOrStdout())
	},
}

func initBenchCfg() {
	benchCfg.Bench.Rows = viper.GetInt("bench.rows")
	benchCfg.Bench.Workers = viper.GetInt("bench.workers")
	benchCfg.Bench.NullRatio = viper.GetFloat64("bench.nullRatio")
	benchCfg.Bench.Seed = viper.GetInt64("bench.seed")
}

func initBenchCmd() {
	RootCmd.AddCommand(benchCmd)
	def := util.DefaultConfig()
	benchCmd.Flags().Int("rows", def.Bench.Rows, "total rows")
	benchCmd.Flags().Int("workers", def.Bench.Workers, "chunks evaluated concurrently")
	benchCmd.Flags().Float64("null_ratio", def.Bench.NullRatio, "probability of a null row")
	benchCmd.Flags().Int64("seed", def.Bench.Seed, "random seed")
	benchCmd.Flags().Int64("memory_limit", def.Storage.MemoryLimit, "buffer manager memory limit in bytes")
	benchCmd.Flags().BoolVar(&benchSpill, "spill", false, "round trip results through the buffer manager")

	viper.BindPFlag("bench.rows", benchCmd.Flags().Lookup("rows"))
	viper.BindPFlag("bench.workers", benchCmd.Flags().Lookup("workers"))
	viper.BindPFlag("bench.nullRatio", benchCmd.Flags().Lookup("null_ratio"))
	viper.BindPFlag("bench.seed", benchCmd.Flags().Lookup("seed"))
	viper.BindPFlag("storage.memoryLimit", benchCmd.Flags().Lookup("memory_limit"))
}

//scan cmd

var scanInfo = "read a csv or parquet file into chunks"
var scanTypes string
var scanTree bool
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: scanInfo,
	Long:  scanInfo,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = util.ConvertPanicError(rec)
			}
		}()
		initScanCfg()
		if err = benchCfg.Validate(); err != nil {
			return err
		}
		rows, err := RunScan(benchCfg, scanTypes, scanTree, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !benchCfg.Scan.PrintResult {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "rows\t%d\n", rows)
		}
		return err
	},
}

func initScanCfg() {
	benchCfg.Scan.Path = viper.GetString("scan.path")
	benchCfg.Scan.Format = viper.GetString("scan.format")
	benchCfg.Scan.Delimiter = viper.GetString("scan.delimiter")
	benchCfg.Scan.Header = viper.GetBool("scan.header")
	benchCfg.Scan.MaxRows = viper.GetInt("scan.maxRows")
	benchCfg.Scan.PrintResult = viper.GetBool("scan.printResult")
	benchCfg.Scan.SavePath = viper.GetString("scan.savePath")
}

func initScanCmd() {
	RootCmd.AddCommand(scanCmd)
	def := util.DefaultConfig()
	scanCmd.Flags().String("path", "", "data file")
	scanCmd.Flags().String("format", def.Scan.Format, "csv, parquet")
	scanCmd.Flags().String("delimiter", def.Scan.Delimiter, "csv field delimiter")
	scanCmd.Flags().Bool("header", def.Scan.Header, "csv file has a headline")
	scanCmd.Flags().Int("max_rows", 0, "stop after this many rows. 0 reads all")
	scanCmd.Flags().Bool("print_result", false, "print rows")
	scanCmd.Flags().String("save", "", "write the chunks to this file in binary form")
	scanCmd.Flags().StringVar(&scanTypes, "types", "", "column types. e.g. integer,varchar,decimal(12,2),date")
	scanCmd.Flags().BoolVar(&scanTree, "tree", false, "print the encoding tree of the first chunk")

	viper.BindPFlag("scan.path", scanCmd.Flags().Lookup("path"))
	viper.BindPFlag("scan.format", scanCmd.Flags().Lookup("format"))
	viper.BindPFlag("scan.delimiter", scanCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("scan.header", scanCmd.Flags().Lookup("header"))
	viper.BindPFlag("scan.maxRows", scanCmd.Flags().Lookup("max_rows"))
	viper.BindPFlag("scan.printResult", scanCmd.Flags().Lookup("print_result"))
	viper.BindPFlag("scan.savePath", scanCmd.Flags().Lookup("save"))
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "vecbench.toml"

// loadConfig reads the config file if there is one. Flags override it.
func loadConfig() {
	if cfgFile != "" {
		err := readConfigFile(cfgFile)
		if err != nil {
			util.Error("load config file failed",
				zap.String("fpath", cfgFile),
				zap.Error(err))
			os.Exit(1)
		}
		return
	}
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			err := readConfigFile(fpath)
			if err != nil {
				util.Error("load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			break
		}
	}
}

// readConfigFile validates the file as a whole and hands it to viper
// so that flags can override single keys.
func readConfigFile(fpath string) error {
	cfg, err := util.LoadConfig(fpath)
	if err != nil {
		return err
	}
	viper.SetConfigFile(fpath)
	err = viper.ReadInConfig()
	if err != nil {
		return err
	}
	benchCfg = cfg
	return nil
}

func main() {
	defer util.Sync()
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
