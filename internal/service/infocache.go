package service

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/powerplanchanger/ppc/internal/constants"
)

// CachedController memoizes Info lookups, which are comparatively slow and
// rarely change. Status queries always go to the underlying controller.
type CachedController struct {
	Controller
	info *lru.Cache[string, Info]
}

// NewCachedController wraps c.
func NewCachedController(c Controller) *CachedController {
	cache, err := lru.New[string, Info](constants.ServiceInfoCacheSize)
	if err != nil {
		panic(err)
	}
	return &CachedController{Controller: c, info: cache}
}

// Info returns the cached info for name, fetching it on a miss.
func (c *CachedController) Info(name string) (Info, error) {
	if inf, ok := c.info.Get(name); ok {
		return inf, nil
	}
	inf, err := c.Controller.Info(name)
	if err != nil {
		return Info{}, err
	}
	c.info.Add(name, inf)
	return inf, nil
}

// Refresh drops every cached entry.
func (c *CachedController) Refresh() {
	c.info.Purge()
}
