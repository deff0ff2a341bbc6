package swaporder

import (
	"gorm.io/gorm"

	"github.com/riftresearch/swap-coordinator/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, order *model.SwapOrder) (*model.SwapOrder, error)
	GetByOtcSwapID(tx *gorm.DB, otcSwapID string) (*model.SwapOrder, error)
	ListByEvmAddress(tx *gorm.DB, evmAddress string, page, pageSize int) ([]model.SwapOrder, int64, error)
	UpdateStatus(tx *gorm.DB, otcSwapID string, status model.SwapStatus) error
	UpdateRefundAvailable(tx *gorm.DB, otcSwapID string, available bool) error
	MarkSettled(tx *gorm.DB, otcSwapID string, mmTxHash string) error
	FindUnsettled(tx *gorm.DB) ([]model.SwapOrder, error)
}
