package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/Itish41/ReguGuard/service"
)

// WorkspaceController manages HTTP requests for the analyst workspace
type WorkspaceController struct {
	service *services.WorkspaceService
}

// NewWorkspaceController initializes the controller with the service
func NewWorkspaceController(service *services.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{service: service}
}

// RegisterRoutes mounts every workspace endpoint on r. uploadLimit runs in
// front of the upload handler only.
func (c *WorkspaceController) RegisterRoutes(r gin.IRouter, uploadLimit ...gin.HandlerFunc) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.POST("/upload", append(uploadLimit, c.UploadDocument)...)

	r.GET("/rules", c.ListRules)
	r.GET("/rules/:id", c.GetRule)
	r.GET("/rules/:id/render", c.RenderRule)

	r.POST("/rules/:id/steps", c.AddStep)
	r.PUT("/rules/:id/steps/:stepId/status", c.UpdateStepStatus)
	r.PUT("/rules/:id/steps/:stepId/comment", c.UpdateStepComment)
	r.POST("/rules/:id/steps/reorder", c.ReorderSteps)

	r.GET("/board", c.GetBoard)
	r.POST("/board/:column/reorder", c.ReorderColumn)

	r.GET("/metrics", c.GetMetrics)
	r.GET("/search", c.SearchRules)
	r.POST("/export", c.ExportSnapshot)
}

// UploadDocument handles the file upload request
func (c *WorkspaceController) UploadDocument(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	result, err := c.service.UploadAndProcessDocument(ctx.Request.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, "UploadDocument", err)
		return
	}

	message := "Document uploaded and processed successfully"
	if result.TotalItems == 0 {
		message = "No obligations detected; current workspace kept"
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
		"upload":  result,
	})
}

// SearchRules runs a full-text search over the current rules
func (c *WorkspaceController) SearchRules(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	rules, err := c.service.Search(ctx.Request.Context(), query)
	if err != nil {
		respondError(ctx, "SearchRules", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}

func (c *WorkspaceController) GetMetrics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.service.Metrics())
}

// ExportSnapshot returns the board for report generation
func (c *WorkspaceController) ExportSnapshot(ctx *gin.Context) {
	result, err := c.service.ExportSnapshot(ctx.Request.Context())
	if err != nil {
		respondError(ctx, "ExportSnapshot", err)
		return
	}
	log.Printf("[ExportSnapshot] Exported snapshot (archive id %q)", result.ArchiveID)
	ctx.JSON(http.StatusOK, result)
}
