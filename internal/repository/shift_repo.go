package repository

import (
	"go-apotek-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(shift *model.Shift) error
	FindOpen() (*model.Shift, error)
	FindByID(id uuid.UUID) (*model.Shift, error)
	FindRecent(limit int) ([]model.Shift, error)
	Update(shift *model.Shift) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db}
}

func (r *shiftRepo) Create(shift *model.Shift) error {
	return r.db.Create(shift).Error
}

// FindOpen returns the register shift currently open; one register, so at
// most one open shift at a time.
func (r *shiftRepo) FindOpen() (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("User").Where("status = ?", model.ShiftOpen).First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("User").First(&shift, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindRecent(limit int) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.Preload("User").Order("opened_at DESC").Limit(limit).Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(shift *model.Shift) error {
	return r.db.Save(shift).Error
}
