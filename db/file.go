package db

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/suxatcode/concentric-layout/layout"
	"gopkg.in/yaml.v3"
)

// FileSource reads the complete dataset from a JSON or YAML file on every
// query and applies the query in memory. Path "-" reads JSON from stdin.
type FileSource struct {
	Path  string
	stdin io.Reader
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, stdin: os.Stdin}
}

func (f *FileSource) Dataset(ctx context.Context, q Query) (*layout.Dataset, error) {
	var (
		ds  *layout.Dataset
		err error
	)
	if f.Path == "-" {
		ds, err = ReadDataset(f.stdin, false)
	} else {
		ds, err = ReadDatasetFile(f.Path)
	}
	if err != nil {
		return nil, err
	}
	return BestSubgraph(ds, q), nil
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func ReadDatasetFile(path string) (*layout.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset '%s'", path)
	}
	defer file.Close()
	ds, err := ReadDataset(file, isYAML(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dataset '%s'", path)
	}
	return ds, nil
}

// ReadDataset decodes a dataset, in YAML if asYAML is set and JSON otherwise.
func ReadDataset(r io.Reader, asYAML bool) (*layout.Dataset, error) {
	ds := layout.Dataset{}
	var err error
	if asYAML {
		err = yaml.NewDecoder(r).Decode(&ds)
	} else {
		err = json.NewDecoder(r).Decode(&ds)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode dataset")
	}
	return &ds, nil
}
