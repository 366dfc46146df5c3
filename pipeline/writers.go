package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// writeTableParquet writes the feature table with a schema built at runtime,
// one DOUBLE column per table column. The CSV-style writer is the parquet
// interface that accepts a dynamic column list.
func writeTableParquet(path string, table FeatureTable) error {
	md := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		md[i] = fmt.Sprintf("name=%s, type=DOUBLE", col)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewCSVWriter(md, fw, 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rec := make([]interface{}, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			rec[i] = v
		}
		if err := pw.Write(rec); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// writeTableCSV writes the table with NaN spelled out so pandas-style
// readers parse the sentinel back.
func writeTableCSV(path string, table FeatureTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	rec := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
