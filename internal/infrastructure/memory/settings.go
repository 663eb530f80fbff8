package memory

import (
	"context"

	"github.com/sangkips/retailpos/internal/domain/entity"
)

type settingsRepository struct {
	view
}

func (r *settingsRepository) Get(_ context.Context) (*entity.StoreSettings, error) {
	var out *entity.StoreSettings
	r.read(func(st *state) {
		if st.settings != nil {
			s := *st.settings
			out = &s
		}
	})
	return out, nil
}

func (r *settingsRepository) Save(_ context.Context, settings *entity.StoreSettings) error {
	return r.write(func(st *state) error {
		settings.ID = entity.StoreSettingsID
		settings.UpdatedAt = r.s.stamp()
		s := *settings
		st.settings = &s
		return nil
	})
}
