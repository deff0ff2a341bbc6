package model

import (
	"time"

	"gorm.io/gorm"
)

// SwapOrder is the persisted record of one submitted swap. The history
// reconciler reads these and merges the OTC service's live status.
type SwapOrder struct {
	gorm.Model
	OtcSwapID       string     `gorm:"column:otc_swap_id;type:varchar(255);not null;uniqueIndex"`
	EvmAddress      string     `gorm:"column:evm_address;type:varchar(255);not null;index"`
	Direction       string     `gorm:"column:direction;type:varchar(50);not null"`
	InputSymbol     string     `gorm:"column:input_symbol;type:varchar(50);not null"`
	OutputSymbol    string     `gorm:"column:output_symbol;type:varchar(50);not null"`
	InputAmount     string     `gorm:"column:input_amount;type:varchar(255);not null"`
	OutputAmount    string     `gorm:"column:output_amount;type:varchar(255);not null"`
	DepositAddress  string     `gorm:"column:deposit_address;type:varchar(255);not null"`
	Status          SwapStatus `gorm:"column:status;type:varchar(64);default:'pending'"`
	OrderID         string     `gorm:"column:order_id;type:varchar(255)"`
	UserTxHash      string     `gorm:"column:user_tx_hash;type:varchar(255)"`
	MMTxHash        string     `gorm:"column:mm_tx_hash;type:varchar(255)"`
	RefundAvailable bool       `gorm:"column:refund_available;default:false"`
	SettledAt       *time.Time `gorm:"column:settled_at"`
}

func (SwapOrder) TableName() string {
	return "swap_orders"
}
