package service

import (
	"errors"
	"time"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrShiftAlreadyOpen = errors.New("a register shift is already open")
	ErrShiftNotOpen     = errors.New("shift is not open")
)

type ShiftService interface {
	OpenShift(userID uuid.UUID, openingFloat int64, note string, actorID string) (*model.Shift, error)
	CloseShift(shiftID uuid.UUID, closingCash int64, actorID string) (*model.Shift, error)
	GetOpenShift() (*model.Shift, error)
	GetShifts(limit int) ([]model.Shift, error)
}

type shiftService struct {
	shiftRepo repository.ShiftRepository
	wsHub     *ws.Hub
}

func NewShiftService(shiftRepo repository.ShiftRepository, hub *ws.Hub) ShiftService {
	return &shiftService{shiftRepo: shiftRepo, wsHub: hub}
}

// OpenShift starts a register session with the counted opening float. Only
// one shift may be open; the POS refuses checkouts without one.
func (s *shiftService) OpenShift(userID uuid.UUID, openingFloat int64, note string, actorID string) (*model.Shift, error) {
	if _, err := s.shiftRepo.FindOpen(); err == nil {
		return nil, ErrShiftAlreadyOpen
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shift := &model.Shift{
		UserID:       userID,
		Status:       model.ShiftOpen,
		OpenedAt:     time.Now(),
		OpeningFloat: openingFloat,
		Note:         note,
	}
	shift.CreatedBy = actorID
	shift.UpdatedBy = actorID

	if err := s.shiftRepo.Create(shift); err != nil {
		return nil, err
	}

	go s.wsHub.Publish("shift_opened", map[string]interface{}{
		"shift_id":      shift.ID,
		"opening_float": shift.OpeningFloat,
	})

	return shift, nil
}

// CloseShift records the counted drawer and ends the session. The difference
// against ExpectedCash is left for the closing report to surface.
func (s *shiftService) CloseShift(shiftID uuid.UUID, closingCash int64, actorID string) (*model.Shift, error) {
	shift, err := s.shiftRepo.FindByID(shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != model.ShiftOpen {
		return nil, ErrShiftNotOpen
	}

	now := time.Now()
	shift.Status = model.ShiftClosed
	shift.ClosedAt = &now
	shift.ClosingCash = &closingCash
	shift.UpdatedBy = actorID

	if err := s.shiftRepo.Update(shift); err != nil {
		return nil, err
	}

	go s.wsHub.Publish("shift_closed", map[string]interface{}{
		"shift_id":      shift.ID,
		"expected_cash": shift.ExpectedCash(),
		"closing_cash":  closingCash,
		"order_count":   shift.OrderCount,
	})

	return shift, nil
}

func (s *shiftService) GetOpenShift() (*model.Shift, error) {
	return s.shiftRepo.FindOpen()
}

func (s *shiftService) GetShifts(limit int) ([]model.Shift, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.shiftRepo.FindRecent(limit)
}
