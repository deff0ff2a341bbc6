package consts

const (
	BTC_DECIMALS       = 8
	SYNTHETIC_DECIMALS = 8
	ETH_DECIMALS       = 18

	// Display precision cap for user-entered amounts.
	MAX_DISPLAY_DECIMALS = 8
)
