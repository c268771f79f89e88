package chronicle

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// LogRecord is one log line to import.
type LogRecord struct {
	Dim1           string    `yaml:"dim1"`
	Metric1        string    `yaml:"metric1"`
	EntryTime      time.Time `yaml:"entry_time"`
	CollectionTime time.Time `yaml:"collection_time"`
}

// Sample timestamps used by SampleRecords.
var (
	SampleEntryTime      = time.Date(2024, time.December, 1, 23, 30, 30, 0, time.UTC)
	SampleCollectionTime = SampleEntryTime.Add(60 * time.Second)
)

// SampleRecords returns the two fixed example records.
func SampleRecords() []LogRecord {
	return []LogRecord{
		{
			Dim1:           "dimension1value1",
			Metric1:        "metric1value1",
			EntryTime:      SampleEntryTime,
			CollectionTime: SampleCollectionTime,
		},
		{
			Dim1:           "dimension1value2",
			Metric1:        "metric1value2",
			EntryTime:      SampleEntryTime,
			CollectionTime: SampleCollectionTime,
		},
	}
}

// ImportLogsRequest is the body of a logs:import call, in the protobuf JSON
// mapping of the API message.
type ImportLogsRequest struct {
	InlineSource *InlineSource `json:"inlineSource"`
}

// InlineSource carries the forwarder and the logs themselves.
type InlineSource struct {
	Forwarder string `json:"forwarder"`
	Logs      []Log  `json:"logs"`
}

// Log is a single entry of an InlineSource.
type Log struct {
	// Data is the binary log-data message. encoding/json renders []byte as
	// standard base64, the same as the protobuf JSON mapping of bytes.
	Data           []byte     `json:"data,omitempty"`
	LogEntryTime   *Timestamp `json:"logEntryTime,omitempty"`
	CollectionTime *Timestamp `json:"collectionTime,omitempty"`
}

// NewImportLogsRequest builds the envelope for records, preserving order.
func NewImportLogsRequest(forwarder string, records []LogRecord) *ImportLogsRequest {
	logs := make([]Log, 0, len(records))
	for _, r := range records {
		logs = append(logs, Log{
			Data:           EncodeLogData(r.Dim1, r.Metric1),
			LogEntryTime:   NewTimestamp(r.EntryTime),
			CollectionTime: NewTimestamp(r.CollectionTime),
		})
	}
	return &ImportLogsRequest{
		InlineSource: &InlineSource{
			Forwarder: forwarder,
			Logs:      logs,
		},
	}
}

// Marshal renders the request as two-space indented JSON.
func (r *ImportLogsRequest) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Records decodes the envelope back into LogRecords.
func (r *ImportLogsRequest) Records() ([]LogRecord, error) {
	if r.InlineSource == nil {
		return nil, nil
	}
	out := make([]LogRecord, 0, len(r.InlineSource.Logs))
	for i, l := range r.InlineSource.Logs {
		dim1, metric1, err := DecodeLogData(l.Data)
		if err != nil {
			return nil, fmt.Errorf("log %d: %w", i, err)
		}
		out = append(out, LogRecord{
			Dim1:           dim1,
			Metric1:        metric1,
			EntryTime:      l.LogEntryTime.Time(),
			CollectionTime: l.CollectionTime.Time(),
		})
	}
	return out, nil
}

// Timestamp is a google.protobuf.Timestamp with its JSON mapping (RFC 3339).
type Timestamp struct {
	pb *timestamppb.Timestamp
}

// NewTimestamp converts t. A zero time yields nil so the field is omitted.
func NewTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{pb: timestamppb.New(t)}
}

// Time returns the instant in UTC, or the zero time for a nil Timestamp.
func (t *Timestamp) Time() time.Time {
	if t == nil || t.pb == nil {
		return time.Time{}
	}
	return t.pb.AsTime()
}

func (t *Timestamp) MarshalJSON() ([]byte, error) {
	if t == nil || t.pb == nil {
		return []byte("null"), nil
	}
	return protojson.Marshal(t.pb)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	pb := &timestamppb.Timestamp{}
	if err := protojson.Unmarshal(b, pb); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	t.pb = pb
	return nil
}

// Field numbers of the log-data message.
const (
	fieldDim1    protowire.Number = 1
	fieldMetric1 protowire.Number = 2
)

// EncodeLogData returns the protobuf wire encoding of a log-data message.
// Empty strings are omitted, as proto3 does.
func EncodeLogData(dim1, metric1 string) []byte {
	var b []byte
	if dim1 != "" {
		b = protowire.AppendTag(b, fieldDim1, protowire.BytesType)
		b = protowire.AppendString(b, dim1)
	}
	if metric1 != "" {
		b = protowire.AppendTag(b, fieldMetric1, protowire.BytesType)
		b = protowire.AppendString(b, metric1)
	}
	return b
}

// DecodeLogData parses bytes produced by EncodeLogData. Unknown fields are skipped.
func DecodeLogData(b []byte) (dim1, metric1 string, err error) {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", "", protowire.ParseError(n)
		}
		b = b[n:]

		if typ == protowire.BytesType && (num == fieldDim1 || num == fieldMetric1) {
			v, m := protowire.ConsumeString(b)
			if m < 0 {
				return "", "", protowire.ParseError(m)
			}
			if num == fieldDim1 {
				dim1 = v
			} else {
				metric1 = v
			}
			b = b[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return "", "", protowire.ParseError(m)
		}
		b = b[m:]
	}
	return dim1, metric1, nil
}
