package history

import (
	"context"

	"github.com/riftresearch/swap-coordinator/internal/model"
	"github.com/riftresearch/swap-coordinator/internal/view"
)

// Entry is one reconciled history row: the persisted record merged with the
// OTC service's live status and the derived pipeline.
type Entry struct {
	OtcSwapID       string                        `json:"otc_swap_id"`
	Direction       string                        `json:"direction"`
	InputSymbol     string                        `json:"input_symbol"`
	InputAmount     string                        `json:"input_amount"`
	OutputSymbol    string                        `json:"output_symbol"`
	OutputAmount    string                        `json:"output_amount"`
	Status          model.SwapStatus              `json:"status"`
	RefundAvailable bool                          `json:"refund_available"`
	Steps           []model.ExecutionPipelineStep `json:"steps"`
	CreatedAt       string                        `json:"created_at"`
}

type IHistory interface {
	// List returns one reconciled, paginated history page for an address.
	List(ctx context.Context, evmAddress string, page int) (*view.PagingResponse[Entry], error)

	// ReconcileUnsettled refreshes every non-terminal persisted record from
	// the OTC service. Run periodically.
	ReconcileUnsettled(ctx context.Context) error
}
