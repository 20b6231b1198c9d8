package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/text/encoding/charmap"
)

const ocrSpaceEndpoint = "https://api.ocr.space/parse/image"

var (
	ErrUnsupportedFile   = errors.New("unsupported file format; upload .pdf, .txt or an image")
	ErrOCRNotConfigured  = errors.New("OCR_SPACE_API_KEY environment variable is not set")
	ErrOCRRateLimited    = errors.New("rate limit exceeded for OCR requests")
	errRetryableResponse = errors.New("retryable OCR response")
)

// ocrFileTypes maps supported binary extensions to OCR.space filetype values.
var ocrFileTypes = map[string]string{
	".pdf":  "PDF",
	".png":  "PNG",
	".jpg":  "JPG",
	".jpeg": "JPG",
	".gif":  "GIF",
	".tif":  "TIFF",
	".tiff": "TIFF",
}

// SupportedExtension reports whether filename can be turned into text.
func SupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".txt" {
		return true
	}
	_, ok := ocrFileTypes[ext]
	return ok
}

// DocumentExtractor turns uploaded files into plain text: .txt files are
// decoded locally, PDFs and images go through OCR.space.
type DocumentExtractor struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *RateLimiter

	// maxElapsed bounds the total time spent retrying one OCR call.
	maxElapsed time.Duration
}

// NewDocumentExtractor builds an extractor. An empty apiKey still allows .txt
// uploads.
func NewDocumentExtractor(apiKey string) *DocumentExtractor {
	return &DocumentExtractor{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: ocrSpaceEndpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 15 * time.Second,
			},
		},
		limiter:    ocrRateLimiter,
		maxElapsed: 45 * time.Second,
	}
}

// Extract returns the text content of an uploaded file.
func (e *DocumentExtractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".txt" {
		return decodeText(data), nil
	}
	fileType, ok := ocrFileTypes[ext]
	if !ok {
		return "", ErrUnsupportedFile
	}
	return e.ocr(ctx, filename, fileType, data)
}

// decodeText reads UTF-8 and falls back to Latin-1 for legacy exports.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		log.Printf("[decodeText] Latin-1 decode failed, dropping invalid bytes: %v", err)
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	// ErrorMessage is a string or a list of strings depending on the failure.
	ErrorMessage json.RawMessage `json:"ErrorMessage"`
}

func (r ocrSpaceResponse) errorText() string {
	if len(r.ErrorMessage) == 0 || string(r.ErrorMessage) == "null" {
		return ""
	}
	var single string
	if err := json.Unmarshal(r.ErrorMessage, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(r.ErrorMessage, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return string(r.ErrorMessage)
}

// ocr sends the file to OCR.space, retrying transient failures with
// exponential backoff.
func (e *DocumentExtractor) ocr(ctx context.Context, filename, fileType string, data []byte) (string, error) {
	if e.apiKey == "" {
		return "", ErrOCRNotConfigured
	}
	if !e.limiter.Allow("ocr_space") {
		return "", ErrOCRRateLimited
	}

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		body, err = e.postOCR(ctx, filename, fileType, data)
		if err == nil {
			return nil
		}
		log.Printf("[DocumentExtractor.ocr] Attempt %d for %s failed: %v", attempt, filename, err)
		if errors.Is(err, errRetryableResponse) || isTransportError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = e.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}

	var result ocrSpaceResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("OCR API error: %s", string(body))
	}
	if msg := result.errorText(); result.IsErroredOnProcessing || msg != "" {
		return "", fmt.Errorf("OCR.space error: %s", msg)
	}
	if len(result.ParsedResults) == 0 {
		return "", fmt.Errorf("no OCR results found in response")
	}

	pages := make([]string, 0, len(result.ParsedResults))
	for _, page := range result.ParsedResults {
		pages = append(pages, page.ParsedText)
	}
	text := strings.Join(pages, "\n")
	log.Printf("[DocumentExtractor.ocr] Extracted %d characters from %s", len(text), filename)
	return text, nil
}

func (e *DocumentExtractor) postOCR(ctx context.Context, filename, fileType string, data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fields := map[string]string{
		"apikey":            e.apiKey,
		"language":          "eng",
		"isOverlayRequired": "false",
		"filetype":          fileType,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write %s field: %w", k, err)
		}
	}
	fw, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file bytes: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %s", errRetryableResponse, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status code: %d, response: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// isTransportError reports network level failures worth another attempt.
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
