package powerplan

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchemes struct {
	ids       []uuid.UUID
	names     map[uuid.UUID]string
	active    uuid.UUID
	nameReads int
	setErr    error
	enumErr   error
	activeErr error
	activated []uuid.UUID
}

func newFakeSchemes() *fakeSchemes {
	return &fakeSchemes{
		ids: []uuid.UUID{BalancedGUID, HighPerformanceGUID, PowerSaverGUID},
		names: map[uuid.UUID]string{
			BalancedGUID:        "Balanced",
			HighPerformanceGUID: "High performance",
			PowerSaverGUID:      "Power saver",
		},
		active: BalancedGUID,
	}
}

func (f *fakeSchemes) Enumerate() ([]uuid.UUID, error) { return f.ids, f.enumErr }

func (f *fakeSchemes) Active() (uuid.UUID, error) { return f.active, f.activeErr }

func (f *fakeSchemes) SetActive(id uuid.UUID) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.activated = append(f.activated, id)
	f.active = id
	return nil
}

func (f *fakeSchemes) FriendlyName(id uuid.UUID) (string, error) {
	f.nameReads++
	name, ok := f.names[id]
	if !ok {
		return "", errors.New("element not found")
	}
	return name, nil
}

func (f *fakeSchemes) Description(id uuid.UUID) (string, error) {
	return "desc of " + f.names[id], nil
}

func TestCatalog_List(t *testing.T) {
	c := NewCatalog(newFakeSchemes())

	plans, err := c.List()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Balanced", plans[0].Name)
	assert.Equal(t, "desc of Balanced", plans[0].Description)
	assert.Equal(t, PowerSaverGUID, plans[2].GUID)
}

func TestCatalog_FromGUIDCaches(t *testing.T) {
	api := newFakeSchemes()
	c := NewCatalog(api)

	_, err := c.FromGUID(BalancedGUID)
	require.NoError(t, err)
	_, err = c.FromGUID(BalancedGUID)
	require.NoError(t, err)
	assert.Equal(t, 1, api.nameReads)

	api.names[BalancedGUID] = "Renamed"
	c.ClearCache()
	p, err := c.FromGUID(BalancedGUID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, 2, api.nameReads)
}

func TestCatalog_FromGUIDUnknown(t *testing.T) {
	c := NewCatalog(newFakeSchemes())

	_, err := c.FromGUID(uuid.New())
	assert.Error(t, err)
}

func TestCatalog_ActiveAndActivate(t *testing.T) {
	api := newFakeSchemes()
	c := NewCatalog(api)

	p, err := c.Active()
	require.NoError(t, err)
	assert.True(t, p.Equal(Plan{GUID: BalancedGUID}))

	require.NoError(t, c.Activate(PowerSaverGUID))
	p, err = c.Active()
	require.NoError(t, err)
	assert.Equal(t, "Power saver", p.Name)
}

func TestCatalog_ActivateError(t *testing.T) {
	api := newFakeSchemes()
	api.setErr = errors.New("access denied")
	c := NewCatalog(api)

	err := c.Activate(PowerSaverGUID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not set the active power plan")
}

func TestCatalog_Find(t *testing.T) {
	c := NewCatalog(newFakeSchemes())

	tests := []struct {
		query string
		want  uuid.UUID
	}{
		{"high performance", HighPerformanceGUID},
		{"  Balanced ", BalancedGUID},
		{"a1841308-3541-4fab-bc81-f71556f20b4a", PowerSaverGUID},
	}
	for _, tt := range tests {
		p, err := c.Find(tt.query)
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, p.GUID, tt.query)
	}

	_, err := c.Find("Ultimate")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlan_String(t *testing.T) {
	p := Plan{GUID: BalancedGUID, Name: "Balanced"}
	assert.Equal(t, "Balanced [381b4222-f694-41f0-9685-ff5bb260df2e]", p.String())
}
