package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Itish41/ReguGuard/models"
	services "github.com/Itish41/ReguGuard/service"
	"github.com/Itish41/ReguGuard/workflow"
)

const regulation = `13. Consent required. An organisation shall not collect personal data about an individual unless the individual gives consent.
The organisation may disclose personal data where required by law.
An organisation that contravenes this section shall be liable to a fine.`

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.NewWorkspace(workflow.NewBoard(), services.NewDocumentExtractor(""), services.NewRegulatoryClassifier(nil))
	router := gin.New()
	NewWorkspaceController(svc).RegisterRoutes(router)
	return router
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func uploadFixture(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "act.txt", regulation))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(setupRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestWorkspaceFlow(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "act.txt", regulation))
	require.Equal(t, http.StatusOK, w.Code)
	var upload struct {
		Upload services.UploadResult `json:"upload"`
	}
	decode(t, w, &upload)
	assert.Equal(t, 3, upload.Upload.TotalItems)

	w = do(router, http.MethodGet, "/rules?severity=high&sort=desc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Rules []models.Rule `json:"rules"`
		Total int           `json:"total"`
	}
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "rule-003", list.Rules[0].ControlID)

	w = do(router, http.MethodPost, "/rules/rule-001/steps", `{"text":"Draft consent form","priority":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var change services.StepChange
	decode(t, w, &change)
	assert.Equal(t, "rule-001-1", change.Step.ID)
	assert.Equal(t, models.ColumnInProgress, change.Column)

	w = do(router, http.MethodPut, "/rules/rule-001/steps/rule-001-1/status", `{"status":"done"}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &change)
	assert.Equal(t, models.ColumnImplemented, change.Column)

	w = do(router, http.MethodPut, "/rules/rule-001/steps/rule-001-1/comment", `{"comment":""}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/board", "")
	var board struct {
		Columns map[models.Column][]string `json:"columns"`
	}
	decode(t, w, &board)
	assert.Equal(t, []string{"rule-001"}, board.Columns[models.ColumnImplemented])
	assert.Empty(t, board.Columns[models.ColumnInProgress])

	w = do(router, http.MethodGet, "/rules/rule-001/render", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rendering struct {
		Statement string `json:"statement"`
	}
	decode(t, w, &rendering)
	assert.Equal(t, "Organisation must not collect personal data about an individual unless the individual gives consent.", rendering.Statement)

	w = do(router, http.MethodGet, "/rules/rule-001", "")
	var detail services.RuleDetail
	decode(t, w, &detail)
	assert.Equal(t, models.ColumnImplemented, detail.Column)
	require.Len(t, detail.Steps, 1)

	w = do(router, http.MethodGet, "/metrics", "")
	var metrics services.Metrics
	decode(t, w, &metrics)
	assert.Equal(t, 3, metrics.TotalRules)

	w = do(router, http.MethodGet, "/search?q=liable", "")
	decode(t, w, &list)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "rule-003", list.Rules[0].ControlID)

	w = do(router, http.MethodPost, "/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	var export services.ExportResult
	decode(t, w, &export)
	assert.Len(t, export.Snapshot.Columns[models.ColumnAnalyzed], 3)
	assert.Len(t, export.Snapshot.Steps["rule-001"], 1)
}

func TestReorderEndpoints(t *testing.T) {
	router := setupRouter()
	uploadFixture(t, router)

	for _, text := range []string{"A", "B", "C"} {
		w := do(router, http.MethodPost, "/rules/rule-001/steps", fmt.Sprintf(`{"text":%q}`, text))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := do(router, http.MethodPost, "/rules/rule-001/steps/reorder", `{"source":0,"destination":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var steps struct {
		Steps []models.ActionStep `json:"steps"`
	}
	decode(t, w, &steps)
	var texts []string
	for _, s := range steps.Steps {
		texts = append(texts, s.Text)
	}
	assert.Equal(t, []string{"B", "C", "A"}, texts)

	for _, id := range []string{"rule-002", "rule-003"} {
		w = do(router, http.MethodPost, "/rules/"+id+"/steps", `{"text":"x"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w = do(router, http.MethodPost, "/board/in-progress/reorder", `{"source":2,"destination":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var col struct {
		Rules []string `json:"rules"`
	}
	decode(t, w, &col)
	assert.Equal(t, []string{"rule-003", "rule-001", "rule-002"}, col.Rules)
}

func TestErrorResponses(t *testing.T) {
	router := setupRouter()
	uploadFixture(t, router)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown rule", http.MethodGet, "/rules/rule-404", "", http.StatusNotFound},
		{"render unknown rule", http.MethodGet, "/rules/rule-404/render", "", http.StatusNotFound},
		{"step on unknown rule", http.MethodPost, "/rules/rule-404/steps", `{"text":"x"}`, http.StatusNotFound},
		{"empty step text", http.MethodPost, "/rules/rule-001/steps", `{"text":"  "}`, http.StatusBadRequest},
		{"past due date", http.MethodPost, "/rules/rule-001/steps", `{"text":"x","dueDate":"2000-01-01"}`, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/rules/rule-001/steps", `{"text":"x","priority":"urgent"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/rules/rule-001/steps", `{`, http.StatusBadRequest},
		{"unknown step", http.MethodPut, "/rules/rule-001/steps/rule-001-9/status", `{"status":"done"}`, http.StatusNotFound},
		{"missing comment", http.MethodPut, "/rules/rule-001/steps/rule-001-1/comment", `{}`, http.StatusBadRequest},
		{"missing reorder index", http.MethodPost, "/rules/rule-001/steps/reorder", `{"source":0}`, http.StatusBadRequest},
		{"reorder out of range", http.MethodPost, "/rules/rule-001/steps/reorder", `{"source":0,"destination":5}`, http.StatusBadRequest},
		{"reorder analyzed pool", http.MethodPost, "/board/analyzed/reorder", `{"source":0,"destination":1}`, http.StatusBadRequest},
		{"bad score filter", http.MethodGet, "/rules?min_score=abc", "", http.StatusBadRequest},
		{"bad sort", http.MethodGet, "/rules?sort=sideways", "", http.StatusBadRequest},
		{"bad column filter", http.MethodGet, "/rules?column=backlog", "", http.StatusBadRequest},
		{"search without query", http.MethodGet, "/search", "", http.StatusBadRequest},
		{"upload without file", http.MethodPost, "/upload", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	router := setupRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "memo.docx", "text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{workflow.ErrRuleNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", workflow.ErrStepNotFound), http.StatusNotFound},
		{workflow.ErrIndexOutOfRange, http.StatusBadRequest},
		{services.ErrInvalidDueDate, http.StatusBadRequest},
		{fmt.Errorf("%w: ocr down", services.ErrUpstream), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
