package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(srv *httptest.Server) *DocumentExtractor {
	e := NewDocumentExtractor("test-key")
	e.endpoint = srv.URL
	e.client = srv.Client()
	e.limiter = NewRateLimiter(10, time.Minute)
	e.maxElapsed = 5 * time.Second
	return e
}

func TestDocumentExtractor_PlainText(t *testing.T) {
	e := NewDocumentExtractor("")

	text, err := e.Extract(context.Background(), "rules.txt", []byte("Organisation must comply."))
	require.NoError(t, err)
	assert.Equal(t, "Organisation must comply.", text)

	text, err = e.Extract(context.Background(), "legacy.TXT", []byte{'c', 'a', 'f', 0xe9})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestDocumentExtractor_Rejections(t *testing.T) {
	e := NewDocumentExtractor("")

	_, err := e.Extract(context.Background(), "memo.docx", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = e.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrOCRNotConfigured)

	e = NewDocumentExtractor("test-key")
	e.limiter = NewRateLimiter(0, time.Minute)
	_, err = e.Extract(context.Background(), "scan.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrOCRRateLimited)
}

func TestDocumentExtractor_OCRRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "test-key", r.FormValue("apikey"))
		assert.Equal(t, "PDF", r.FormValue("filetype"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"page one"},{"ParsedText":"page two"}],"IsErroredOnProcessing":false}`))
	}))
	defer srv.Close()

	text, err := newTestExtractor(srv).Extract(context.Background(), "scan.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDocumentExtractor_OCRProcessingError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["File failed validation"]}`))
	}))
	defer srv.Close()

	_, err := newTestExtractor(srv).Extract(context.Background(), "scan.png", []byte("png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File failed validation")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDocumentExtractor_OCRClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`invalid api key`))
	}))
	defer srv.Close()

	_, err := newTestExtractor(srv).Extract(context.Background(), "scan.jpg", []byte("jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRateLimiter_Allow(t *testing.T) {
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Hour)
	rl.windowStart = current
	rl.now = func() time.Time { return current }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	current = current.Add(59 * time.Minute)
	assert.False(t, rl.Allow("a"))

	current = current.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection closed", fmt.Errorf("OCR request failed: %w", &url.Error{Op: "Post", URL: "http://ocr", Err: io.EOF}), true},
		{"truncated body", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"dial refused", &url.Error{Op: "Post", URL: "http://ocr", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}, true},
		{"deadline", &url.Error{Op: "Post", URL: "http://ocr", Err: context.DeadlineExceeded}, true},
		{"cancelled", &url.Error{Op: "Post", URL: "http://ocr", Err: context.Canceled}, false},
		{"message mentions eof", errors.New("failed to parse response whereof"), false},
		{"client error", errors.New("OCR.space returned 403: invalid api key"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransportError(tt.err))
		})
	}
}
