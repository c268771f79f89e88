package chronicle

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// recordsFile is the on-disk form accepted by LoadRecords:
//
//	records:
//	  - dim1: host-a
//	    metric1: "42"
//	    entry_time: 2024-12-01T23:30:30Z
//	    collection_time: 2024-12-01T23:31:30Z
type recordsFile struct {
	Records []LogRecord `yaml:"records"`
}

// LoadRecords reads log records from YAML. Errors are KindConfig.
func LoadRecords(r io.Reader) ([]LogRecord, error) {
	var f recordsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Kind: KindConfig, Op: "load records", Err: errors.New("records file is empty")}
		}
		return nil, &Error{Kind: KindConfig, Op: "load records", Err: fmt.Errorf("failed to parse records: %w", err)}
	}
	return f.Records, nil
}
