package main

import (
	"github.com/riftresearch/swap-coordinator/internal/server"
)

func main() {
	server.Init()
}
