package tracker

import (
	"time"
)

// DefaultSourceTag is written into every flat-file line.
const DefaultSourceTag = "ISS"

// MeasurementName is the table/measurement used by time-series sinks.
const MeasurementName = "iss_tracker"

// Position is the raw position as reported by a position source, before
// any display formatting.
type Position struct {
	Timestamp int64
	Latitude  string
	Longitude string
}

// PositionRecord is the enriched unit produced by one pipeline run.
// Latitude and Longitude are kept exactly as the upstream reported them.
type PositionRecord struct {
	Timestamp string `json:"timestamp" msgpack:"timestamp" dynamodbav:"timestamp"` // UTC display string
	Latitude  string `json:"latitude" msgpack:"latitude" dynamodbav:"latitude"`
	Longitude string `json:"longitude" msgpack:"longitude" dynamodbav:"longitude"`
	Address   string `json:"address" msgpack:"address" dynamodbav:"address"`

	// Epoch is the raw UNIX time the Timestamp was rendered from.
	Epoch  int64  `json:"epoch" msgpack:"epoch" dynamodbav:"epoch"`
	RunID  string `json:"runId,omitempty" msgpack:"run_id,omitempty" dynamodbav:"run_id,omitempty"`
	Source string `json:"source,omitempty" msgpack:"source,omitempty" dynamodbav:"source,omitempty"`
}

// IsEmpty reports whether the record carries no position ("no data").
func (r PositionRecord) IsEmpty() bool {
	return r.Timestamp == "" && r.Latitude == "" && r.Longitude == ""
}

// Time returns the record's epoch as a UTC time.
func (r PositionRecord) Time() time.Time {
	return time.Unix(r.Epoch, 0).UTC()
}
