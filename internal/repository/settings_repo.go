package repository

import (
	"errors"

	"go-apotek-pos/internal/model"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	Get() (*model.StoreSettings, error)
	Update(settings *model.StoreSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db}
}

// Get returns the singleton settings row, creating an empty one on first use.
func (r *settingsRepo) Get() (*model.StoreSettings, error) {
	var settings model.StoreSettings
	err := r.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.StoreSettings{StoreName: "Apotek"}
		settings.CreatedBy = "system"
		settings.UpdatedBy = "system"
		if err := r.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Update(settings *model.StoreSettings) error {
	return r.db.Save(settings).Error
}
