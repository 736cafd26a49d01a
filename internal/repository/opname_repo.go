package repository

import (
	"errors"

	"go-apotek-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSessionClosed reports that the session row was no longer in progress by
// the time the closing write ran.
var ErrSessionClosed = errors.New("stock opname session is no longer in progress")

// StockAdjustment is one write-back computed at finalize time for an item
// whose counted stock differs from the snapshot.
type StockAdjustment struct {
	ProductID     uuid.UUID
	PreviousStock int
	NewStock      int
}

type OpnameRepository interface {
	FindActive() (*model.StockOpnameSession, error)
	FindByID(id uuid.UUID) (*model.StockOpnameSession, error)
	FindRecent(limit int) ([]model.StockOpnameSession, error)
	CreateSessionWithItems(session *model.StockOpnameSession, items []model.StockOpnameItem) error
	FindItems(sessionID uuid.UUID) ([]model.StockOpnameItem, error)
	FindItem(id uuid.UUID) (*model.StockOpnameItem, error)
	UpdateCountedStock(itemID uuid.UUID, counted *int, updatedBy string) error
	UpdateStatus(sessionID uuid.UUID, status model.OpnameStatus, updatedBy string) error
	Finalize(session *model.StockOpnameSession, adjustments []StockAdjustment) error
}

// Item inserts go in chunks to stay under the backend's batch-insert limits.
const opnameInsertBatchSize = 100

type opnameRepo struct {
	db *gorm.DB
}

func NewOpnameRepo(db *gorm.DB) OpnameRepository {
	return &opnameRepo{db}
}

func (r *opnameRepo) FindActive() (*model.StockOpnameSession, error) {
	var session model.StockOpnameSession
	err := r.db.
		Where("status IN ?", []model.OpnameStatus{model.OpnameDraft, model.OpnameInProgress}).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *opnameRepo) FindByID(id uuid.UUID) (*model.StockOpnameSession, error) {
	var session model.StockOpnameSession
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *opnameRepo) FindRecent(limit int) ([]model.StockOpnameSession, error) {
	var sessions []model.StockOpnameSession
	err := r.db.Order("created_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

func (r *opnameRepo) CreateSessionWithItems(session *model.StockOpnameSession, items []model.StockOpnameItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SessionID = session.ID
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, opnameInsertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *opnameRepo) FindItems(sessionID uuid.UUID) ([]model.StockOpnameItem, error) {
	var items []model.StockOpnameItem
	err := r.db.Preload("Product").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *opnameRepo) FindItem(id uuid.UUID) (*model.StockOpnameItem, error) {
	var item model.StockOpnameItem
	err := r.db.First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCountedStock writes only the counted value; the system snapshot stays
// untouched for the life of the session.
func (r *opnameRepo) UpdateCountedStock(itemID uuid.UUID, counted *int, updatedBy string) error {
	return r.db.Model(&model.StockOpnameItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"counted_stock": counted,
			"updated_by":    updatedBy,
		}).Error
}

func (r *opnameRepo) UpdateStatus(sessionID uuid.UUID, status model.OpnameStatus, updatedBy string) error {
	return r.db.Model(&model.StockOpnameSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

// Finalize applies every stock adjustment, appends the inventory log rows and
// completes the session inside a single transaction, so a failure anywhere
// leaves products, logs and session untouched. The closing update is
// conditional on the row still being in progress; a second finalize racing
// the first loses and rolls back without writing anything.
func (r *opnameRepo) Finalize(session *model.StockOpnameSession, adjustments []StockAdjustment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.StockOpnameSession{}).
			Where("id = ? AND status = ?", session.ID, model.OpnameInProgress).
			Updates(map[string]interface{}{
				"status":           session.Status,
				"completed_at":     session.CompletedAt,
				"total_adjusted":   session.TotalAdjusted,
				"total_difference": session.TotalDifference,
				"updated_by":       session.UpdatedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionClosed
		}

		for _, adj := range adjustments {
			if err := tx.Model(&model.Product{}).
				Where("id = ?", adj.ProductID).
				Updates(map[string]interface{}{
					"stock":      adj.NewStock,
					"updated_by": session.UpdatedBy,
				}).Error; err != nil {
				return err
			}

			qty := adj.NewStock - adj.PreviousStock
			if qty < 0 {
				qty = -qty
			}
			logRow := model.InventoryLog{
				ProductID:     adj.ProductID,
				Type:          model.LogAdjustment,
				Quantity:      qty,
				PreviousStock: adj.PreviousStock,
				CurrentStock:  adj.NewStock,
				Reference:     session.Code,
			}
			logRow.CreatedBy = session.UpdatedBy
			logRow.UpdatedBy = session.UpdatedBy
			if err := tx.Create(&logRow).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
