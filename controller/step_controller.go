package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/Itish41/ReguGuard/service"
)

// AddStep attaches a new action step to a rule
func (c *WorkspaceController) AddStep(ctx *gin.Context) {
	var req services.StepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	change, err := c.service.AddStep(ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, "AddStep", err)
		return
	}
	ctx.JSON(http.StatusCreated, change)
}

// UpdateStepStatus changes a step's status and reports the rule's column
func (c *WorkspaceController) UpdateStepStatus(ctx *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	change, err := c.service.UpdateStepStatus(ctx.Param("id"), ctx.Param("stepId"), req.Status)
	if err != nil {
		respondError(ctx, "UpdateStepStatus", err)
		return
	}
	ctx.JSON(http.StatusOK, change)
}

func (c *WorkspaceController) UpdateStepComment(ctx *gin.Context) {
	var req struct {
		Comment *string `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := c.service.UpdateStepComment(ctx.Param("id"), ctx.Param("stepId"), *req.Comment); err != nil {
		respondError(ctx, "UpdateStepComment", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}

// ReorderSteps moves a step within its rule's sequence
func (c *WorkspaceController) ReorderSteps(ctx *gin.Context) {
	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ruleID := ctx.Param("id")
	if err := c.service.ReorderSteps(ruleID, *req.Source, *req.Destination); err != nil {
		respondError(ctx, "ReorderSteps", err)
		return
	}
	detail, err := c.service.GetRule(ruleID)
	if err != nil {
		respondError(ctx, "ReorderSteps", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"steps": detail.Steps})
}
