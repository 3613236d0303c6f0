package selfplay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const schemaVersion = "value_sample_v1"

// WriteParquet stores samples at outPath, replacing any existing file atomically.
func WriteParquet(outPath string, samples []Sample) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write to a temp file and rename atomically.
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, samples,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadParquet loads every sample stored by WriteParquet.
func ReadParquet(inPath string) ([]Sample, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[Sample](f)
	defer reader.Close()

	samples := make([]Sample, 0, reader.NumRows())
	for {
		// Fresh buffer per batch: rows keep references to their feature slices
		buf := make([]Sample, 256)
		n, err := reader.Read(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
	return samples, nil
}
