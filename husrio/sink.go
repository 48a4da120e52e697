package husrio

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/natefinch/atomic"

	"github.com/fieldkit-data/husrmine/rule"
	"github.com/fieldkit-data/husrmine/seqdb"
)

// FileSink is a rule.Sink that buffers accepted rules and writes them to
// path in one atomic rename on Close, so a reader never observes a
// partially-written rule file. Each line is formatted
// "i1,i2 ==> j1,j2  #SUP:s #CONF:c #UTIL:u".
type FileSink struct {
	path string
	buf  bytes.Buffer
}

// NewFileSink returns a FileSink that will atomically write to path once
// Close is called.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Emit appends r's formatted line to the in-memory buffer.
func (s *FileSink) Emit(r rule.Record) error {
	writeItems(&s.buf, r.Antecedent)
	s.buf.WriteString(" ==> ")
	writeItems(&s.buf, r.Consequent)
	fmt.Fprintf(&s.buf, "  #SUP:%d #CONF:%s #UTIL:%s\n", r.Support, formatFloat(r.Confidence), formatFloat(r.Utility))
	return nil
}

// Close atomically writes the buffered rules to the sink's path.
func (s *FileSink) Close() error {
	return atomic.WriteFile(s.path, bytes.NewReader(s.buf.Bytes()))
}

func writeItems(buf *bytes.Buffer, items []seqdb.Item) {
	for i, it := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatInt(int64(it), 10))
	}
}

func formatFloat(f float64) string {
	return trimTrailingZeros(fmt.Sprintf("%.6f", f))
}

func trimTrailingZeros(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == '0' {
		end--
	}
	if end > 0 && s[end-1] == '.' {
		end--
	}
	return s[:end]
}
