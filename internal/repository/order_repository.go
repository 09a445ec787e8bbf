package repository

import (
	"errors"
	"time"

	"github.com/confirmador/internal/constants"
	"github.com/confirmador/internal/models"

	"gorm.io/gorm"
)

// OrderListFilter narrows admin order listings.
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	OrderNumber string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByShopifyOrderID(shopifyOrderID string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListAwaitingResponse() ([]models.Order, error)
	ListSweepCandidates() ([]models.Order, error)
	Updates(id uint, updates map[string]interface{}) error
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	ReplaceItems(orderID uint, items []models.LineItem) error
	AppendTimeline(orderID uint, entry models.TimelineEntry) error
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order together with its line items.
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID fetches an order with its items.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByShopifyOrderID fetches an order by its external id.
func (r *GormOrderRepository) GetByShopifyOrderID(shopifyOrderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("shopify_order_id = ?", shopifyOrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List returns the operator-facing order listing.
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNumber != "" {
		query = query.Where("order_number = ?", filter.OrderNumber)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("customer_name LIKE ? OR customer_phone LIKE ? OR order_number LIKE ?", pattern, pattern, pattern)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("Items").Order("created_at DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAwaitingResponse returns orders still waiting for a customer reply,
// newest first. The matcher depends on this ordering for its tie-break.
func (r *GormOrderRepository) ListAwaitingResponse() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("status = ?", constants.OrderStatusAwaitingResponse).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListSweepCandidates returns awaiting orders whose initial message has been
// dispatched; these are the only orders the reminder sweep may act on.
func (r *GormOrderRepository) ListSweepCandidates() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("status = ? AND message_sent_at IS NOT NULL", constants.OrderStatusAwaitingResponse).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Updates applies a partial update to an order row.
func (r *GormOrderRepository) Updates(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatus sets the status together with additional column updates.
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceItems destructively replaces the order's line items: all existing
// rows are deleted before the new set is inserted, so re-syncs never
// accumulate duplicates.
func (r *GormOrderRepository) ReplaceItems(orderID uint, items []models.LineItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = orderID
		}
		return tx.Create(&items).Error
	})
}

// AppendTimeline appends an audit entry to the order's timeline. Existing
// entries are never rewritten.
func (r *GormOrderRepository) AppendTimeline(orderID uint, entry models.TimelineEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "timeline").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		timeline := append(order.Timeline, entry)
		return tx.Model(&models.Order{}).Where("id = ?", orderID).
			Update("timeline", timeline).Error
	})
}
