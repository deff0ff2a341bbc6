package swaporder

import (
	"time"

	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, order *model.SwapOrder) (*model.SwapOrder, error) {
	return order, tx.Create(order).Error
}

func (s *Store) GetByOtcSwapID(tx *gorm.DB, otcSwapID string) (*model.SwapOrder, error) {
	var order model.SwapOrder
	err := tx.Where("otc_swap_id = ?", otcSwapID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByEvmAddress returns one page of swaps, newest first. Page is 1-based.
func (s *Store) ListByEvmAddress(tx *gorm.DB, evmAddress string, page, pageSize int) ([]model.SwapOrder, int64, error) {
	var orders []model.SwapOrder
	var total int64

	q := tx.Model(&model.SwapOrder{}).Where("evm_address = ?", evmAddress)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(PageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// PageOffset maps a 1-based page number to a row offset; page 1 starts at
// row 0. Values below 1 clamp to the first page.
func PageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func (s *Store) UpdateStatus(tx *gorm.DB, otcSwapID string, status model.SwapStatus) error {
	return tx.Model(&model.SwapOrder{}).
		Where("otc_swap_id = ?", otcSwapID).
		Update("status", status).Error
}

func (s *Store) UpdateRefundAvailable(tx *gorm.DB, otcSwapID string, available bool) error {
	return tx.Model(&model.SwapOrder{}).
		Where("otc_swap_id = ?", otcSwapID).
		Update("refund_available", available).Error
}

func (s *Store) MarkSettled(tx *gorm.DB, otcSwapID string, mmTxHash string) error {
	now := time.Now()
	return tx.Model(&model.SwapOrder{}).
		Where("otc_swap_id = ?", otcSwapID).
		Updates(map[string]interface{}{
			"status":     model.SwapStatusSettled,
			"mm_tx_hash": mmTxHash,
			"settled_at": now,
		}).Error
}

func (s *Store) FindUnsettled(tx *gorm.DB) ([]model.SwapOrder, error) {
	var orders []model.SwapOrder
	err := tx.Where("status NOT IN ?", []model.SwapStatus{
		model.SwapStatusSettled,
		model.SwapStatusUserRefundedDetected,
	}).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
