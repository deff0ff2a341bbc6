package quote

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PriceCache holds last-known USD prices per asset symbol. It backs the
// immediate USD echo on keystroke edits and the minimum-swap threshold
// check; entries age out so a dead feed cannot pin a stale price forever.
type PriceCache struct {
	cache *gocache.Cache
}

func NewPriceCache() *PriceCache {
	return &PriceCache{
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (p *PriceCache) SetUsdPrice(symbol string, price float64) {
	if price <= 0 {
		return
	}
	p.cache.Set(symbol, price, gocache.DefaultExpiration)
}

func (p *PriceCache) UsdPrice(symbol string) (float64, bool) {
	v, ok := p.cache.Get(symbol)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}
