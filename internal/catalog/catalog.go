package catalog

import (
	"fmt"
	"sync"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

// Source is where criteria come from, usually the score store.
type Source interface {
	ListCriteria() ([]models.Criterion, error)
}

// Catalog is a read-only snapshot of the scorable criteria, loaded
// once and cached. Criteria are reference data; when they do change,
// callers invalidate explicitly.
type Catalog struct {
	mu     sync.RWMutex
	source Source
	loaded bool
	list   []models.Criterion
	byName map[string]models.Criterion
	byID   map[int64]models.Criterion
}

func New(source Source) *Catalog {
	return &Catalog{source: source}
}

func (c *Catalog) ensure() error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	criteria, err := c.source.ListCriteria()
	if err != nil {
		return fmt.Errorf("failed to load criteria: %w", err)
	}

	c.list = criteria
	c.byName = make(map[string]models.Criterion, len(criteria))
	c.byID = make(map[int64]models.Criterion, len(criteria))
	for _, criterion := range criteria {
		c.byName[criterion.Name] = criterion
		c.byID[criterion.ID] = criterion
	}
	c.loaded = true

	return nil
}

// All returns the cached criteria in storage order.
func (c *Catalog) All() ([]models.Criterion, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Criterion, len(c.list))
	copy(out, c.list)
	return out, nil
}

// ByName returns a name-keyed snapshot for reconciliation lookups.
func (c *Catalog) ByName() (map[string]models.Criterion, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]models.Criterion, len(c.byName))
	for k, v := range c.byName {
		out[k] = v
	}
	return out, nil
}

// Lookup resolves one criterion by name.
func (c *Catalog) Lookup(name string) (models.Criterion, bool, error) {
	if err := c.ensure(); err != nil {
		return models.Criterion{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	criterion, ok := c.byName[name]
	return criterion, ok, nil
}

// Label resolves a criterion id to its name, for response shaping.
func (c *Catalog) NameByID(id int64) (string, bool, error) {
	if err := c.ensure(); err != nil {
		return "", false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	criterion, ok := c.byID[id]
	return criterion.Name, ok, nil
}

// Invalidate drops the snapshot; the next read reloads from source.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.list = nil
	c.byName = nil
	c.byID = nil
	c.mu.Unlock()
}
