package store

import (
	"github.com/riftresearch/swap-coordinator/internal/store/swaporder"
)

type Store struct {
	SwapOrder swaporder.IStore
}

func New() *Store {
	return &Store{
		SwapOrder: swaporder.New(),
	}
}
