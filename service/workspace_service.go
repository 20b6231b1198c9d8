package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Itish41/ReguGuard/models"
	"github.com/Itish41/ReguGuard/obligation"
	"github.com/Itish41/ReguGuard/workflow"
)

var (
	ErrEmptyDocument = errors.New("no text could be extracted from the document")
	ErrEmptyQuery    = errors.New("search query is required")

	// ErrUpstream wraps failures of OCR, object storage and the search index.
	ErrUpstream = errors.New("external service failed")
)

// ObjectStore keeps uploaded originals and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// Classifier turns document text into rules.
type Classifier interface {
	Classify(text string) []models.Rule
}

// RuleIndex makes the current rule set searchable.
type RuleIndex interface {
	ReplaceRules(ctx context.Context, rules []models.Rule) error
	Search(ctx context.Context, query string) ([]string, error)
}

// Archive persists upload records and exported snapshots.
type Archive interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	SaveSnapshot(ctx context.Context, snap *models.WorkflowSnapshot) error
}

// WorkspaceService runs one analyst session: uploads feed the board, and the
// board serves the rule list, steps, renderings, metrics and exports.
type WorkspaceService struct {
	board      *workflow.Board
	extractor  TextExtractor
	classifier Classifier

	// Optional collaborators; nil when not configured.
	store   ObjectStore
	index   RuleIndex
	archive Archive

	mu               sync.Mutex
	lastDocumentID   string
	lastProcessingMs int64

	now func() time.Time
}

// NewWorkspaceService wires the service from the environment. db may be nil,
// in which case nothing is archived.
func NewWorkspaceService(db *gorm.DB) (*WorkspaceService, error) {
	svc := NewWorkspace(
		workflow.NewBoard(),
		NewDocumentExtractor(os.Getenv("OCR_SPACE_API_KEY")),
		NewRegulatoryClassifier(nil),
	)

	store, err := NewS3ObjectStoreFromEnv()
	if err != nil {
		return nil, err
	}
	if store != nil {
		svc.store = store
	}

	index, err := NewElasticRuleIndex(os.Getenv("ELASTICSEARCH_URL"))
	if err != nil {
		log.Printf("Warning: %v", err)
	} else if index != nil {
		svc.index = index
	}

	if db != nil {
		svc.archive = NewGormArchive(db)
	} else {
		log.Println("[NewWorkspaceService] No database configured, uploads and exports are not archived")
	}
	return svc, nil
}

// NewWorkspace builds a service without optional collaborators.
func NewWorkspace(board *workflow.Board, extractor TextExtractor, classifier Classifier) *WorkspaceService {
	return &WorkspaceService{
		board:      board,
		extractor:  extractor,
		classifier: classifier,
		now:        time.Now,
	}
}

// UploadResult describes one processed upload.
type UploadResult struct {
	DocumentID   string        `json:"document_id"`
	Filename     string        `json:"filename"`
	FileURL      string        `json:"file_url,omitempty"`
	TotalItems   int           `json:"total_items"`
	Items        []models.Rule `json:"items"`
	ProcessingMs int64         `json:"processing_ms"`
}

// UploadAndProcessDocument extracts and classifies an upload and, when it
// yields rules, replaces the session's rule set with them. Failures before
// that point leave the session untouched.
func (s *WorkspaceService) UploadAndProcessDocument(ctx context.Context, file io.Reader, filename, contentType string) (*UploadResult, error) {
	if !SupportedExtension(filename) {
		return nil, ErrUnsupportedFile
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	start := time.Now()
	text, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFile) {
			return nil, err
		}
		log.Printf("[UploadAndProcessDocument] Text extraction failed for %s: %v", filename, err)
		return nil, fmt.Errorf("%w: failed to extract text: %w", ErrUpstream, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	rules := s.classifier.Classify(text)
	elapsed := time.Since(start).Milliseconds()

	ext := strings.ToLower(filepath.Ext(filename))
	docID := uuid.New().String()
	var fileURL string
	if s.store != nil {
		fileURL, err = s.store.Put(ctx, docID+ext, data, contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}

	result := &UploadResult{
		DocumentID:   docID,
		Filename:     filename,
		FileURL:      fileURL,
		TotalItems:   len(rules),
		Items:        rules,
		ProcessingMs: elapsed,
	}
	if result.Items == nil {
		result.Items = []models.Rule{}
	}

	if len(rules) == 0 {
		log.Printf("[UploadAndProcessDocument] No rules detected in %s; keeping current workspace", filename)
	} else {
		s.board.Load(rules)
		s.mu.Lock()
		s.lastDocumentID = docID
		s.lastProcessingMs = elapsed
		s.mu.Unlock()

		if s.index != nil {
			if err := s.index.ReplaceRules(ctx, rules); err != nil {
				log.Printf("[UploadAndProcessDocument] Elasticsearch indexing error: %v", err)
			}
		}
	}

	if s.archive != nil {
		doc := &models.Document{
			ID:           docID,
			Filename:     filename,
			FileType:     strings.TrimPrefix(ext, "."),
			OriginalURL:  fileURL,
			RuleCount:    len(rules),
			ProcessingMs: elapsed,
		}
		if err := s.archive.SaveDocument(ctx, doc); err != nil {
			log.Printf("[UploadAndProcessDocument] Failed to archive document record: %v", err)
		}
	}

	log.Printf("[UploadAndProcessDocument] Processed %s: %d rules in %dms", filename, len(rules), elapsed)
	return result, nil
}

// ListRules returns the rules matching f.
func (s *WorkspaceService) ListRules(f RuleFilter) []models.Rule {
	return filterRules(s.board.Rules(), f, s.columnOf)
}

func (s *WorkspaceService) columnOf(ruleID string) models.Column {
	c, _ := s.board.ColumnOf(ruleID)
	return c
}

// RuleDetail is a rule with its placement and steps.
type RuleDetail struct {
	Rule   models.Rule         `json:"rule"`
	Column models.Column       `json:"column"`
	Steps  []models.ActionStep `json:"steps"`
}

func (s *WorkspaceService) GetRule(ruleID string) (*RuleDetail, error) {
	rule, ok := s.board.Rule(ruleID)
	if !ok {
		return nil, workflow.ErrRuleNotFound
	}
	steps := s.board.Steps(ruleID)
	if steps == nil {
		steps = []models.ActionStep{}
	}
	return &RuleDetail{Rule: rule, Column: s.columnOf(ruleID), Steps: steps}, nil
}

// RenderRule renders the rule's sentence in all display forms.
func (s *WorkspaceService) RenderRule(ruleID string) (obligation.Rendering, error) {
	rule, ok := s.board.Rule(ruleID)
	if !ok {
		return obligation.Rendering{}, workflow.ErrRuleNotFound
	}
	return obligation.Render(rule.Text), nil
}

// StepRequest is the client payload for a new step.
type StepRequest struct {
	Text        string `json:"text"`
	DueDate     string `json:"dueDate"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Comment     string `json:"comment"`
	Priority    string `json:"priority"`
}

// StepChange reports a step mutation together with the rule's new column.
type StepChange struct {
	Step   *models.ActionStep `json:"step,omitempty"`
	Column models.Column      `json:"column"`
}

func (s *WorkspaceService) AddStep(ruleID string, req StepRequest) (*StepChange, error) {
	due, err := ParseDueDate(req.DueDate, s.now())
	if err != nil {
		return nil, err
	}
	step, err := s.board.AddStep(ruleID, models.StepInput{
		Text:        req.Text,
		DueDate:     due,
		Description: req.Description,
		Assignee:    req.Assignee,
		Comment:     req.Comment,
		Priority:    req.Priority,
	})
	if err != nil {
		return nil, err
	}
	return &StepChange{Step: &step, Column: s.columnOf(ruleID)}, nil
}

func (s *WorkspaceService) UpdateStepStatus(ruleID, stepID, status string) (*StepChange, error) {
	st, ok := models.ParseStepStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidStatus, status)
	}
	if err := s.board.UpdateStatus(ruleID, stepID, st); err != nil {
		return nil, err
	}
	return &StepChange{Column: s.columnOf(ruleID)}, nil
}

func (s *WorkspaceService) UpdateStepComment(ruleID, stepID, comment string) error {
	return s.board.UpdateComment(ruleID, stepID, comment)
}

func (s *WorkspaceService) ReorderSteps(ruleID string, src, dst int) error {
	return s.board.Reorder(ruleID, src, dst)
}

// ReorderColumn moves a rule within a workflow column.
func (s *WorkspaceService) ReorderColumn(column string, src, dst int) error {
	c, ok := models.ParseColumn(column)
	if !ok {
		return fmt.Errorf("%w: %q", workflow.ErrInvalidColumn, column)
	}
	return s.board.ReorderColumn(c, src, dst)
}

// Columns returns the ordered rule ids of every column.
func (s *WorkspaceService) Columns() map[models.Column][]string {
	return s.board.ColumnIDs()
}

func (s *WorkspaceService) Metrics() Metrics {
	s.mu.Lock()
	processingMs := s.lastProcessingMs
	s.mu.Unlock()
	return computeMetrics(s.board.Rules(), processingMs, s.board.ColumnIDs())
}

// Search finds rules by full text, through Elasticsearch when configured and
// by keyword over the session otherwise.
func (s *WorkspaceService) Search(ctx context.Context, query string) ([]models.Rule, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.index == nil {
		return s.ListRules(RuleFilter{Keyword: query}), nil
	}

	ids, err := s.index.Search(ctx, query)
	if err != nil {
		log.Printf("[Search] Elasticsearch error: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	rules := make([]models.Rule, 0, len(ids))
	for _, id := range ids {
		// The index can trail the board after a failed re-index.
		if r, ok := s.board.Rule(id); ok {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

// ExportResult is the snapshot plus the id it was archived under, if any.
type ExportResult struct {
	Snapshot  models.BoardSnapshot `json:"snapshot"`
	ArchiveID string               `json:"archive_id,omitempty"`
}

// ExportSnapshot captures the board for report generation and archives it
// when a database is configured. Archive failures are logged, not returned.
func (s *WorkspaceService) ExportSnapshot(ctx context.Context) (*ExportResult, error) {
	result := &ExportResult{Snapshot: s.board.Snapshot()}
	if s.archive == nil {
		return result, nil
	}

	payload, err := json.Marshal(result.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	record := &models.WorkflowSnapshot{Payload: payload}
	s.mu.Lock()
	if s.lastDocumentID != "" {
		id := s.lastDocumentID
		record.DocumentID = &id
	}
	s.mu.Unlock()

	if err := s.archive.SaveSnapshot(ctx, record); err != nil {
		log.Printf("[ExportSnapshot] Failed to archive snapshot: %v", err)
		return result, nil
	}
	result.ArchiveID = record.ID
	return result, nil
}
