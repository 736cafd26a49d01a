package service

import (
	"errors"
	"strconv"
	"time"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/webhook"
	"go-apotek-pos/internal/ws"
	"go-apotek-pos/pkg/idgen"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionActive   = errors.New("another stock opname session is still active")
	ErrSessionNotOpen  = errors.New("stock opname session is not in progress")
	ErrSessionFinished = errors.New("stock opname session is already finished")
	ErrUncountedItems  = errors.New("all items must be counted before finalizing")
	ErrInvalidCount    = errors.New("counted stock must be a non-negative whole number")
	ErrNoProducts      = errors.New("no products available to count")
)

type OpnameService interface {
	StartSession(notes string, userID, userName string) (*model.StockOpnameSession, error)
	RecordCount(itemID uuid.UUID, rawValue string, userID string) (*model.StockOpnameItem, error)
	FinalizeSession(sessionID uuid.UUID, userID, userName string) (*model.StockOpnameSession, error)
	CancelSession(sessionID uuid.UUID, userID string) (*model.StockOpnameSession, error)
	GetSessions(limit int) ([]model.StockOpnameSession, error)
	GetSessionItems(sessionID uuid.UUID) ([]model.StockOpnameItem, error)
}

type opnameService struct {
	opnameRepo   repository.OpnameRepository
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	wsHub        *ws.Hub
	dispatcher   *webhook.Dispatcher
}

func NewOpnameService(
	opnameRepo repository.OpnameRepository,
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	hub *ws.Hub,
	dispatcher *webhook.Dispatcher,
) OpnameService {
	return &opnameService{
		opnameRepo:   opnameRepo,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		wsHub:        hub,
		dispatcher:   dispatcher,
	}
}

// ParseCountedStock validates raw counter input. Only digit strings are
// accepted; an empty string clears the count back to "not counted yet".
func ParseCountedStock(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return nil, ErrInvalidCount
		}
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, ErrInvalidCount
	}
	return &value, nil
}

// StartSession opens a new counting round and snapshots the current stock of
// every product into count lines. Only one session may be active at a time.
func (s *opnameService) StartSession(notes string, userID, userName string) (*model.StockOpnameSession, error) {
	// 1. Cek session yang masih aktif
	if _, err := s.opnameRepo.FindActive(); err == nil {
		return nil, ErrSessionActive
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. Snapshot seluruh produk
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	now := time.Now()
	session := &model.StockOpnameSession{
		Code:       idgen.Code("SO"),
		Status:     model.OpnameInProgress,
		Notes:      notes,
		StartedAt:  &now,
		TotalItems: len(products),
	}
	session.CreatedBy = userID
	session.UpdatedBy = userID

	items := make([]model.StockOpnameItem, len(products))
	for i, p := range products {
		items[i] = model.StockOpnameItem{
			ProductID:   p.ID,
			SystemStock: p.Stock,
		}
		items[i].CreatedBy = userID
		items[i].UpdatedBy = userID
	}

	if err := s.opnameRepo.CreateSessionWithItems(session, items); err != nil {
		return nil, err
	}

	go s.wsHub.Publish("opname_started", map[string]interface{}{
		"session_id":  session.ID,
		"code":        session.Code,
		"total_items": session.TotalItems,
		"started_by":  userName,
	})

	return session, nil
}

// RecordCount persists a physical count for one line. The system snapshot is
// never touched; clearing resets the line to uncounted.
func (s *opnameService) RecordCount(itemID uuid.UUID, rawValue string, userID string) (*model.StockOpnameItem, error) {
	counted, err := ParseCountedStock(rawValue)
	if err != nil {
		return nil, err
	}

	item, err := s.opnameRepo.FindItem(itemID)
	if err != nil {
		return nil, err
	}

	session, err := s.opnameRepo.FindByID(item.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.OpnameInProgress {
		return nil, ErrSessionNotOpen
	}

	if err := s.opnameRepo.UpdateCountedStock(item.ID, counted, userID); err != nil {
		return nil, err
	}

	item.CountedStock = counted
	return item, nil
}

// FinalizeSession reconciles counted stock against the snapshot. Lines whose
// count differs get their product stock overwritten and an inventory log
// appended; lines that match produce no writes at all. Everything, including
// the session completion, commits in one transaction.
func (s *opnameService) FinalizeSession(sessionID uuid.UUID, userID, userName string) (*model.StockOpnameSession, error) {
	session, err := s.opnameRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.OpnameCompleted || session.Status == model.OpnameCancelled {
		return nil, ErrSessionFinished
	}
	if session.Status != model.OpnameInProgress {
		return nil, ErrSessionNotOpen
	}

	items, err := s.opnameRepo.FindItems(sessionID)
	if err != nil {
		return nil, err
	}

	// Precondition: setiap baris harus sudah dihitung
	for _, item := range items {
		if item.CountedStock == nil {
			return nil, ErrUncountedItems
		}
	}

	var adjustments []repository.StockAdjustment
	totalDifference := 0
	for _, item := range items {
		diff, _ := item.Difference()
		if diff == 0 {
			continue
		}
		adjustments = append(adjustments, repository.StockAdjustment{
			ProductID:     item.ProductID,
			PreviousStock: item.SystemStock,
			NewStock:      *item.CountedStock,
		})
		if diff < 0 {
			diff = -diff
		}
		totalDifference += diff
	}

	now := time.Now()
	session.Status = model.OpnameCompleted
	session.CompletedAt = &now
	session.TotalAdjusted = len(adjustments)
	session.TotalDifference = totalDifference
	session.UpdatedBy = userID

	if err := s.opnameRepo.Finalize(session, adjustments); err != nil {
		// Seorang pemanggil lain menang balapan finalize
		if errors.Is(err, repository.ErrSessionClosed) {
			return nil, ErrSessionFinished
		}
		return nil, err
	}

	go func() {
		payload := map[string]interface{}{
			"session_id":       session.ID,
			"code":             session.Code,
			"total_items":      session.TotalItems,
			"total_adjusted":   session.TotalAdjusted,
			"total_difference": session.TotalDifference,
			"finalized_by":     userName,
		}
		s.wsHub.Publish("opname_completed", payload)

		settings, err := s.settingsRepo.Get()
		if err == nil {
			s.dispatcher.Dispatch(settings.WebhookURL, settings.WebhookToken, "opname.completed", payload)
		}
	}()

	return session, nil
}

// CancelSession abandons an active session without writing any stock. This is
// the escape hatch that keeps a stale session from blocking new counts.
func (s *opnameService) CancelSession(sessionID uuid.UUID, userID string) (*model.StockOpnameSession, error) {
	session, err := s.opnameRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionFinished
	}

	if err := s.opnameRepo.UpdateStatus(sessionID, model.OpnameCancelled, userID); err != nil {
		return nil, err
	}

	session.Status = model.OpnameCancelled
	session.UpdatedBy = userID
	return session, nil
}

func (s *opnameService) GetSessions(limit int) ([]model.StockOpnameSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.opnameRepo.FindRecent(limit)
}

func (s *opnameService) GetSessionItems(sessionID uuid.UUID) ([]model.StockOpnameItem, error) {
	if _, err := s.opnameRepo.FindByID(sessionID); err != nil {
		return nil, err
	}
	return s.opnameRepo.FindItems(sessionID)
}
