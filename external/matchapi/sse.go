package matchapi

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"
)

const maxSSELineBytes = 1 << 20

var errSSELineTooLong = errors.New("sse line exceeds limit")

// sseMessage is one dispatched server-sent event.
type sseMessage struct {
	ID    string
	Event string
	Data  []byte
	Retry time.Duration
}

// sseDecoder reads an endless text/event-stream body one message at a time.
// The id field persists across messages as the stream's last event id.
type sseDecoder struct {
	r      *bufio.Reader
	lastID string
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 16<<10)}
}

// Next blocks until a complete message is available. A message cut off by the
// end of the stream is discarded and io.EOF returned.
func (d *sseDecoder) Next() (sseMessage, error) {
	data := bytebufferpool.Get()
	defer bytebufferpool.Put(data)

	var (
		msg     sseMessage
		hasData bool
	)
	for {
		line, err := d.readLine()
		if err != nil {
			return sseMessage{}, err
		}

		if len(line) == 0 {
			if !hasData {
				msg = sseMessage{}
				continue
			}
			payload := data.B
			if n := len(payload); n > 0 && payload[n-1] == '\n' {
				payload = payload[:n-1]
			}
			msg.ID = d.lastID
			msg.Data = append([]byte(nil), payload...)
			return msg, nil
		}
		if line[0] == ':' {
			continue
		}

		field, value := line, []byte(nil)
		if i := bytes.IndexByte(line, ':'); i >= 0 {
			field, value = line[:i], line[i+1:]
			if len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
		}

		switch string(field) {
		case "data":
			_, _ = data.Write(value)
			_ = data.WriteByte('\n')
			hasData = true
		case "event":
			msg.Event = string(value)
		case "id":
			if bytes.IndexByte(value, 0) < 0 {
				d.lastID = string(value)
			}
		case "retry":
			if ms, convErr := strconv.Atoi(string(value)); convErr == nil && ms >= 0 {
				msg.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

// LastID is the most recent id seen on the stream.
func (d *sseDecoder) LastID() string {
	return d.lastID
}

func (d *sseDecoder) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, err := d.r.ReadSlice('\n')
		if len(line)+len(chunk) > maxSSELineBytes {
			return nil, fmt.Errorf("%w (%d bytes)", errSSELineTooLong, maxSSELineBytes)
		}
		line = append(line, chunk...)
		switch {
		case err == nil:
			return trimEOL(line), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			// a trailing line without newline never completes a message
			return nil, err
		}
	}
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
