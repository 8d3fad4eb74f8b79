package export

import (
	"io"
	"time"
)

// Document is a fully rendered export held in memory, ready to be streamed
// to a client or written to disk. WriteTo may be called any number of times.
type Document interface {
	Filename() string
	ContentType() string
	WriteTo(w io.Writer) (int64, error)
}

// downloadFilename builds the conventional timestamped attachment name,
// e.g. "users-20260831_1405.csv".
func downloadFilename(kind DataKind, ext string, now time.Time) string {
	return string(kind) + "-" + now.UTC().Format("20060102_1504") + "." + ext
}
