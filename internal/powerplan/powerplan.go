// Package powerplan lists, inspects and activates Windows power plans.
package powerplan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/powerplanchanger/ppc/internal/constants"
)

var (
	// ErrNotSupported is returned by the system scheme API off Windows.
	ErrNotSupported = errors.New("power plans are only supported on Windows")

	// ErrPlanNotFound is returned by Find when nothing matches.
	ErrPlanNotFound = errors.New("power plan not found")
)

// Built-in Windows schemes.
var (
	PowerSaverGUID      = uuid.MustParse("a1841308-3541-4fab-bc81-f71556f20b4a")
	BalancedGUID        = uuid.MustParse("381b4222-f694-41f0-9685-ff5bb260df2e")
	HighPerformanceGUID = uuid.MustParse("8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c")
)

// Plan is a power scheme. Two plans are the same plan when their GUIDs match.
type Plan struct {
	GUID        uuid.UUID
	Name        string
	Description string
}

// Equal reports whether p and o refer to the same scheme.
func (p Plan) Equal(o Plan) bool {
	return p.GUID == o.GUID
}

func (p Plan) String() string {
	return fmt.Sprintf("%s [%s]", p.Name, p.GUID)
}

// SchemeAPI is the OS power scheme facility.
type SchemeAPI interface {
	Enumerate() ([]uuid.UUID, error)
	Active() (uuid.UUID, error)
	SetActive(id uuid.UUID) error
	FriendlyName(id uuid.UUID) (string, error)
	Description(id uuid.UUID) (string, error)
}

// Catalog resolves scheme GUIDs to plans, caching names and descriptions.
// It is safe for concurrent use.
type Catalog struct {
	api   SchemeAPI
	cache *lru.Cache[uuid.UUID, Plan]
}

// NewCatalog creates a catalog over api.
func NewCatalog(api SchemeAPI) *Catalog {
	cache, err := lru.New[uuid.UUID, Plan](constants.PlanCacheSize)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	return &Catalog{api: api, cache: cache}
}

// FromGUID returns the plan for id, reading its name and description on
// first use.
func (c *Catalog) FromGUID(id uuid.UUID) (Plan, error) {
	if p, ok := c.cache.Get(id); ok {
		return p, nil
	}
	name, err := c.api.FriendlyName(id)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read name of power plan %s: %w", id, err)
	}
	desc, err := c.api.Description(id)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read description of power plan %s: %w", id, err)
	}
	p := Plan{GUID: id, Name: name, Description: desc}
	c.cache.Add(id, p)
	return p, nil
}

// List returns every plan on the machine in enumeration order.
func (c *Catalog) List() ([]Plan, error) {
	ids, err := c.api.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate power plans: %w", err)
	}
	plans := make([]Plan, 0, len(ids))
	for _, id := range ids {
		p, err := c.FromGUID(id)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Active returns the active plan.
func (c *Catalog) Active() (Plan, error) {
	id, err := c.api.Active()
	if err != nil {
		return Plan{}, fmt.Errorf("could not get the active power plan: %w", err)
	}
	return c.FromGUID(id)
}

// Activate makes id the active plan.
func (c *Catalog) Activate(id uuid.UUID) error {
	if err := c.api.SetActive(id); err != nil {
		return fmt.Errorf("could not set the active power plan: %w", err)
	}
	return nil
}

// Find resolves query as a GUID or, failing that, a case-insensitive plan name.
func (c *Catalog) Find(query string) (Plan, error) {
	q := strings.TrimSpace(query)
	if id, err := uuid.Parse(q); err == nil {
		return c.FromGUID(id)
	}
	plans, err := c.List()
	if err != nil {
		return Plan{}, err
	}
	for _, p := range plans {
		if strings.EqualFold(p.Name, q) {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, query)
}

// ClearCache drops cached names, e.g. after a plan was renamed.
func (c *Catalog) ClearCache() {
	c.cache.Purge()
}
