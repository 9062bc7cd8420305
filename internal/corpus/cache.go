package corpus

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// CatalogueCache keeps parsed catalogues in memory so batch-mode workers
// analyzing many corpora against one catalogue do not reparse it per file.
type CatalogueCache struct {
	cache *gocache.Cache
}

// NewCatalogueCache creates a cache with the given TTL.
func NewCatalogueCache(ttl time.Duration) *CatalogueCache {
	return &CatalogueCache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Load returns the catalogue for the given path, parsing and validating it
// on first use.
func (c *CatalogueCache) Load(path string) (*model.Catalogue, error) {
	if val, found := c.cache.Get(path); found {
		return val.(*model.Catalogue), nil
	}
	cat, err := LoadCatalogue(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(path, cat, gocache.DefaultExpiration)
	return cat, nil
}
