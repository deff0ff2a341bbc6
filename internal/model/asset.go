package model

type Chain string

const (
	ChainBitcoin  Chain = "bitcoin"
	ChainEthereum Chain = "ethereum"
)

// Asset identifies one side of a swap. EVM assets carry a contract address;
// the native gas asset and bitcoin use sentinel addresses.
type Asset struct {
	Symbol      string `json:"symbol"`
	Chain       Chain  `json:"chain"`
	Address     string `json:"address"`
	Decimals    int    `json:"decimals"`
	IsNativeGas bool   `json:"is_native_gas"`
	IsSynthetic bool   `json:"is_synthetic"`
}

func (a Asset) IsBitcoin() bool {
	return a.Chain == ChainBitcoin
}

// RequiresApproval reports whether spending this asset through the settlement
// contract needs an ERC-20 allowance. The native gas asset and the synthetic
// asset bypass approval.
func (a Asset) RequiresApproval() bool {
	return a.Chain == ChainEthereum && !a.IsNativeGas && !a.IsSynthetic
}
