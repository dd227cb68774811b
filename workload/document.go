package workload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/weiihann/parbench/harness"
)

// Entry is an indexed value inside a Document.
type Entry struct {
	Index int     `json:"Index"`
	Value float64 `json:"Value"`
}

// Payload holds the computed values carried by a Document.
type Payload struct {
	MatrixSum float64 `json:"MatrixSum"`
	Result    float64 `json:"Result"`
	Details   []Entry `json:"Details"`
}

// Document is the JSON record serialized by the json, file and mixed
// workloads.
type Document struct {
	ID             int     `json:"Id"`
	Name           string  `json:"Name"`
	Data           Payload `json:"Data"`
	AdditionalData []Entry `json:"AdditionalData"`
}

// NewDocument assembles a Document for index. The first two diagonal
// elements of product are recorded when present.
func NewDocument(index int, result, series float64, product [][]float64, entries int) Document {
	doc := Document{
		ID:   index,
		Name: "Test-" + strconv.Itoa(index),
		Data: Payload{
			MatrixSum: finite(series),
			Result:    finite(result),
		},
		AdditionalData: make([]Entry, 0, entries),
	}

	for i := 0; i < 2 && i < len(product); i++ {
		doc.Data.Details = append(doc.Data.Details, Entry{
			Index: i + 1,
			Value: finite(product[i][i]),
		})
	}

	for k := 0; k < entries; k++ {
		doc.AdditionalData = append(doc.AdditionalData, Entry{
			Index: k,
			Value: float64(k * 2),
		})
	}

	return doc
}

// finite maps NaN and infinities to zero, which encoding/json rejects.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

// RoundTrip encodes the document and decodes it back into a generic map.
// It returns the encoded bytes.
func (d Document) RoundTrip() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document %d: %w", d.ID, err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode document %d: %w", d.ID, err)
	}

	return data, nil
}

// FilePath returns the scratch file used for index inside dir. Names are
// derived from the global index so concurrent workers never share a file.
func FilePath(dir string, index int) string {
	return filepath.Join(dir, "parbench_"+strconv.Itoa(index)+".json")
}

// FileRoundTrip writes data to the scratch file for index, reads it back,
// removes it and decodes the content.
func FileRoundTrip(dir string, index int, data []byte) error {
	path := FilePath(dir, index)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	content, readErr := os.ReadFile(path)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	if readErr != nil {
		return fmt.Errorf("read %s: %w", path, readErr)
	}

	var doc Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if doc.ID != index {
		return fmt.Errorf("decode %s: id %d, want %d", path, doc.ID, index)
	}

	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	return nil
}

func newJSON(cfg Config) (harness.WorkloadFunc, error) {
	return func(_ context.Context, index int) error {
		doc := NewDocument(index, float64(index), 0, nil, cfg.JSONEntries)
		_, err := doc.RoundTrip()

		return err
	}, nil
}

func newFile(cfg Config) (harness.WorkloadFunc, error) {
	if err := ensureDir(cfg.Dir); err != nil {
		return nil, err
	}

	return func(_ context.Context, index int) error {
		doc := NewDocument(index, float64(index), 0, nil, cfg.JSONEntries)

		data, err := doc.RoundTrip()
		if err != nil {
			return err
		}

		return FileRoundTrip(cfg.Dir, index, data)
	}, nil
}
