package storage

import (
	"context"

	"github.com/iudanet/villabook/internal/models"
)

// VillaStorage defines read access to the villa catalog
type VillaStorage interface {
	// ListVillas returns villas matching the filter ordered by name
	ListVillas(ctx context.Context, filter models.VillaFilter) ([]*models.Villa, error)

	// GetVilla retrieves villa by ID
	// Returns ErrVillaNotFound if villa doesn't exist
	GetVilla(ctx context.Context, id string) (*models.Villa, error)
}
