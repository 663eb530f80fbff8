package service

import (
	"context"
	"strings"

	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/upi"
)

const (
	minReceiptMM = 40
	maxReceiptMM = 500
	maxLogoBytes = 512 * 1024
)

// SettingsService handles the store settings singleton
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the store settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.StoreSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, storageErr("load settings", err)
	}

	if settings == nil {
		settings = entity.DefaultStoreSettings()
		if err := s.settingsRepo.Save(ctx, settings); err != nil {
			return nil, storageErr("save settings", err)
		}
	}

	return settings, nil
}

// UpdateSettingsInput represents the input for updating settings. Nil
// fields keep their current value.
type UpdateSettingsInput struct {
	Name            *string
	Address         *string
	Phone           *string
	Email           *string
	TaxID           *string
	UPIID           *string
	Logo            *string
	ReceiptWidthMM  *int
	ReceiptHeightMM *int
}

// UpdateSettings validates and stores new settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.StoreSettings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&settings.Name, input.Name)
	set(&settings.Address, input.Address)
	set(&settings.Phone, input.Phone)
	set(&settings.Email, input.Email)
	set(&settings.TaxID, input.TaxID)
	set(&settings.UPIID, input.UPIID)
	set(&settings.Logo, input.Logo)
	if input.ReceiptWidthMM != nil {
		settings.ReceiptWidthMM = *input.ReceiptWidthMM
	}
	if input.ReceiptHeightMM != nil {
		settings.ReceiptHeightMM = *input.ReceiptHeightMM
	}

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, storageErr("save settings", err)
	}
	return settings, nil
}

func validateSettings(st *entity.StoreSettings) error {
	var errs []apperror.FieldError
	if st.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Store name is required"})
	}
	if st.Email != "" {
		if !validEmail(st.Email) {
			errs = append(errs, apperror.FieldError{Field: "email", Message: "Email is not valid"})
		}
	}
	if st.UPIID != "" && !upi.ValidVPA(st.UPIID) {
		errs = append(errs, apperror.FieldError{Field: "upi_id", Message: "UPI ID must look like name@provider"})
	}
	if st.Logo != "" {
		if !strings.HasPrefix(st.Logo, "data:image/") {
			errs = append(errs, apperror.FieldError{Field: "logo", Message: "Logo must be an image data URL"})
		} else if len(st.Logo) > maxLogoBytes {
			errs = append(errs, apperror.FieldError{Field: "logo", Message: "Logo is too large"})
		}
	}
	if st.ReceiptWidthMM < minReceiptMM || st.ReceiptWidthMM > maxReceiptMM {
		errs = append(errs, apperror.FieldError{Field: "receipt_width_mm", Message: "Width must be between 40 and 500 mm"})
	}
	if st.ReceiptHeightMM < minReceiptMM || st.ReceiptHeightMM > maxReceiptMM {
		errs = append(errs, apperror.FieldError{Field: "receipt_height_mm", Message: "Height must be between 40 and 500 mm"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
