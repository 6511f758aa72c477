package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gin-contrib/sse"
)

// eventStream writes server-sent events and flushes after every frame.
type eventStream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	seq int64
}

func openEventStream(w http.ResponseWriter) (*eventStream, error) {
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("clear write deadline: %w", err)
	}

	header := w.Header()
	header.Set("Content-Type", sse.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := &eventStream{w: w, rc: rc}
	if err := stream.flush(); err != nil {
		return nil, err
	}
	return stream, nil
}

func (s *eventStream) send(name string, payload any) error {
	data, err := sonic.MarshalString(payload)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", name, err)
	}

	s.seq++
	if err := sse.Encode(s.w, sse.Event{
		Id:    strconv.FormatInt(s.seq, 10),
		Event: name,
		Data:  data,
	}); err != nil {
		return fmt.Errorf("write %s frame: %w", name, err)
	}
	return s.flush()
}

func (s *eventStream) ping() error {
	if _, err := io.WriteString(s.w, ": ping\n\n"); err != nil {
		return err
	}
	return s.flush()
}

func (s *eventStream) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flush stream: %w", err)
	}
	return nil
}
