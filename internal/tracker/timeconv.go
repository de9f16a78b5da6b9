package tracker

import "time"

// utcDisplayLayout renders as "2024-01-06 04:19:44+00:00 (UTC)".
const utcDisplayLayout = "2006-01-02 15:04:05+00:00 (UTC)"

// UnixToUTCString converts UNIX epoch seconds to the UTC display format used
// by the flat-file sink.
func UnixToUTCString(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(utcDisplayLayout)
}

// ParsePosition renders pos as a record with the UTC display timestamp.
// Address, RunID and Source are left for later stages.
func ParsePosition(pos Position) PositionRecord {
	return PositionRecord{
		Timestamp: UnixToUTCString(pos.Timestamp),
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Epoch:     pos.Timestamp,
	}
}
