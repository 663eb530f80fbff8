package repository

import (
	"context"

	"github.com/sangkips/retailpos/internal/domain/entity"
)

// SettingsRepository defines the interface for the store settings singleton
type SettingsRepository interface {
	// Get returns (nil, nil) before the first Save.
	Get(ctx context.Context) (*entity.StoreSettings, error)
	Save(ctx context.Context, settings *entity.StoreSettings) error
}
