package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/powerplanchanger/ppc/internal/service"
)

// LoadServices reads the saved selection, drops names that are not installed
// services and saves the list again if any were dropped.
func (c *Controller) LoadServices() error {
	names, err := c.opts.ServiceList.Load()
	if err != nil {
		return err
	}
	known, err := c.knownServices()
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	kept := make([]string, 0, len(names))
	for _, n := range names {
		if !known[strings.ToLower(n)] {
			c.logger.Info().Str("service", n).Msg("Dropping unknown service from list")
			continue
		}
		kept = append(kept, n)
	}

	c.mu.Lock()
	c.selection = service.NewSelection(kept)
	c.mu.Unlock()

	if len(kept) != len(names) {
		if err := c.saveServices(); err != nil {
			return err
		}
	}
	c.ServiceRows()
	return nil
}

// ServiceRows refreshes and returns the selected-service rows. Services that
// have been uninstalled are removed and the list is saved.
func (c *Controller) ServiceRows() []service.Row {
	c.mu.Lock()
	rows, changed := c.selection.Refresh(c.opts.Services)
	c.rows = rows
	c.mu.Unlock()

	if changed {
		if err := c.saveServices(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to save service list")
		}
	}
	c.bus.PublishServices(service.Strings(rows))
	return rows
}

// Rows returns the rows from the last ServiceRows call without querying
// the services again.
func (c *Controller) Rows() []service.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// SelectedServices returns the selected names in display order.
func (c *Controller) SelectedServices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Names()
}

// AddServices selects names and saves the list.
func (c *Controller) AddServices(names ...string) error {
	c.mu.Lock()
	added := c.selection.Add(names...)
	c.mu.Unlock()
	if added == 0 {
		return nil
	}
	if err := c.saveServices(); err != nil {
		return err
	}
	c.ServiceRows()
	return nil
}

// RemoveServices unselects names and saves the list.
func (c *Controller) RemoveServices(names ...string) error {
	c.mu.Lock()
	removed := c.selection.Remove(names...)
	c.mu.Unlock()
	if removed == 0 {
		return nil
	}
	if err := c.saveServices(); err != nil {
		return err
	}
	c.ServiceRows()
	return nil
}

// StartServices starts the named services, or every selected service when
// names is empty. Services already running are left alone.
func (c *Controller) StartServices(ctx context.Context, names ...string) error {
	err := c.runner.Start(ctx, c.targets(names))
	c.ServiceRows()
	return err
}

// StopServices stops the named services, or every selected service when
// names is empty.
func (c *Controller) StopServices(ctx context.Context, names ...string) error {
	err := c.runner.Stop(ctx, c.targets(names))
	c.ServiceRows()
	return err
}

func (c *Controller) targets(names []string) []string {
	if len(names) > 0 {
		return names
	}
	return c.SelectedServices()
}

func (c *Controller) saveServices() error {
	c.mu.Lock()
	names := c.selection.Names()
	c.mu.Unlock()
	if err := c.opts.ServiceList.Save(names); err != nil {
		return fmt.Errorf("failed to save service list: %w", err)
	}
	return nil
}
