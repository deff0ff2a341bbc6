package model

// OrderStatus tracks an aggregator order through sign and settlement.
// Monotonic except that NoOrder is reachable again only as an explicit
// reset after a failure.
type OrderStatus string

const (
	OrderStatusNoOrder OrderStatus = "no_order"
	OrderStatusSigning OrderStatus = "signing"
	OrderStatusSigned  OrderStatus = "signed"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFail    OrderStatus = "fail"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusFail
}

type ApprovalState string

const (
	ApprovalUnknown   ApprovalState = "unknown"
	ApprovalNeeded    ApprovalState = "needs_approval"
	ApprovalApproving ApprovalState = "approving"
	ApprovalApproved  ApprovalState = "approved"
)
