package sink

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// Encoding selects the wire format used by the kafka and s3 sinks.
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgpack Encoding = "msgpack"
)

// ContentType returns the MIME type for the encoding.
func (e Encoding) ContentType() string {
	if e == EncodingMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// Extension returns the file extension used for object keys.
func (e Encoding) Extension() string {
	if e == EncodingMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// Encode serializes rec. The zero Encoding means JSON.
func (e Encoding) Encode(rec tracker.PositionRecord) ([]byte, error) {
	switch e {
	case EncodingJSON, "":
		return json.Marshal(rec)
	case EncodingMsgpack:
		return msgpack.Marshal(rec)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", string(e))
	}
}
