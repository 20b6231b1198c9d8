package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Itish41/ReguGuard/models"
)

// GormArchive persists upload records and exported snapshots in Postgres.
type GormArchive struct {
	db *gorm.DB
}

func NewGormArchive(db *gorm.DB) *GormArchive {
	return &GormArchive{db: db}
}

func (a *GormArchive) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := a.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.Filename, err)
	}
	return nil
}

func (a *GormArchive) SaveSnapshot(ctx context.Context, snap *models.WorkflowSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if err := a.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("failed to save workflow snapshot: %w", err)
	}
	return nil
}
