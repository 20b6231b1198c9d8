package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Itish41/ReguGuard/models"
	services "github.com/Itish41/ReguGuard/service"
)

// ListRules returns the rules matching the query filters
func (c *WorkspaceController) ListRules(ctx *gin.Context) {
	filter, err := ruleFilterFromQuery(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rules := c.service.ListRules(filter)
	ctx.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}

func ruleFilterFromQuery(ctx *gin.Context) (services.RuleFilter, error) {
	f := services.RuleFilter{
		Severity: ctx.Query("severity"),
		Keyword:  ctx.Query("q"),
		Sort:     strings.ToLower(ctx.Query("sort")),
	}
	if f.Sort != "" && f.Sort != "asc" && f.Sort != "desc" {
		return f, fmt.Errorf("sort must be asc or desc")
	}

	for name, dst := range map[string]**float64{"min_score": &f.MinScore, "max_score": &f.MaxScore} {
		raw := ctx.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, fmt.Errorf("%s must be a number", name)
		}
		*dst = &v
	}

	if raw := ctx.Query("column"); raw != "" {
		col, ok := models.ParseColumn(raw)
		if !ok {
			return f, fmt.Errorf("unknown column %q", raw)
		}
		f.Column = col
	}
	return f, nil
}

func (c *WorkspaceController) GetRule(ctx *gin.Context) {
	detail, err := c.service.GetRule(ctx.Param("id"))
	if err != nil {
		respondError(ctx, "GetRule", err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// RenderRule returns the display forms of a rule's sentence
func (c *WorkspaceController) RenderRule(ctx *gin.Context) {
	rendering, err := c.service.RenderRule(ctx.Param("id"))
	if err != nil {
		respondError(ctx, "RenderRule", err)
		return
	}
	ctx.JSON(http.StatusOK, rendering)
}

func (c *WorkspaceController) GetBoard(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"columns": c.service.Columns()})
}

type reorderRequest struct {
	Source      *int `json:"source" binding:"required"`
	Destination *int `json:"destination" binding:"required"`
}

// ReorderColumn applies a manual drag within a workflow column
func (c *WorkspaceController) ReorderColumn(ctx *gin.Context) {
	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	column := ctx.Param("column")
	if err := c.service.ReorderColumn(column, *req.Source, *req.Destination); err != nil {
		respondError(ctx, "ReorderColumn", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"column": column, "rules": c.service.Columns()[models.Column(column)]})
}
