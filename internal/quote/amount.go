package quote

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/riftresearch/swap-coordinator/internal/consts"
	"github.com/riftresearch/swap-coordinator/internal/model"
)

// DisplayAmount renders a balance at the display-precision cap. When the
// true value carries more precision than the cap, the truncated display and
// the full-precision original are both returned so execution can spend the
// real balance rather than the rounded one.
func DisplayAmount(b *model.Web3BigInt) (string, *model.Web3BigInt) {
	display := b.DecimalString()
	if i := strings.Index(display, "."); i >= 0 && len(display)-i-1 > consts.MAX_DISPLAY_DECIMALS {
		display = strings.TrimRight(display[:i+1+consts.MAX_DISPLAY_DECIMALS], "0")
		display = strings.TrimSuffix(display, ".")
		return display, b
	}
	return display, nil
}

// ParseAmount converts a user-entered decimal string into base units at the
// given precision. Digits beyond the precision are rejected, not truncated.
func ParseAmount(input string, decimals int) (*model.Web3BigInt, error) {
	input = strings.TrimSpace(input)
	if input == "" || input == "." {
		return nil, errors.New("empty amount")
	}

	neg := strings.HasPrefix(input, "-")
	if neg {
		return nil, errors.New("negative amount")
	}

	parts := strings.SplitN(input, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, errors.Errorf("amount has more than %d decimal places", decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	value, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", input)
	}

	return &model.Web3BigInt{
		Value:   value.String(),
		Decimal: decimals,
	}, nil
}
