package relmeta

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/relmeta/logger"
	"gorm.io/relmeta/schema"
)

// Catalog entities resolved together, registration and resolution are serialized
type Catalog struct {
	*Config

	mu      sync.Mutex
	schemas []*schema.Schema
	byName  map[string]*schema.Schema
}

// Open initialize a catalog for dialector
func Open(dialector schema.Dialector, opts ...Option) (*Catalog, error) {
	config := &Config{}

	for _, opt := range opts {
		if opt != nil {
			if err := opt.Apply(config); err != nil {
				return nil, err
			}
		}
	}

	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}

	if config.Logger == nil {
		config.Logger = logger.Default
	}

	if dialector != nil {
		config.Dialector = dialector
	}

	if config.cacheStore == nil {
		config.cacheStore = &sync.Map{}
	}

	return &Catalog{Config: config, byName: map[string]*schema.Schema{}}, nil
}

// Register parses models and the entities they reference, their relations are resolved while parsing
func (catalog *Catalog) Register(models ...interface{}) error {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, model := range models {
		if model == nil {
			return ErrModelValueRequired
		}

		s, err := schema.Parse(model, catalog.cacheStore, catalog.NamingStrategy, catalog.Dialector)
		if err != nil {
			return err
		}

		if err := catalog.add(s); err != nil {
			return err
		}
	}
	return nil
}

// Declare adds entities built with the schema API, their relations are resolved by Resolve
func (catalog *Catalog) Declare(schemas ...*schema.Schema) error {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, s := range schemas {
		if s == nil {
			return ErrModelValueRequired
		}

		if err := catalog.add(s); err != nil {
			return err
		}
	}
	return nil
}

func (catalog *Catalog) add(s *schema.Schema) error {
	if registered, ok := catalog.byName[s.Name]; ok {
		if registered == s {
			return nil
		}
		return fmt.Errorf("%w: entity %s", ErrRegistered, s.Name)
	}

	catalog.byName[s.Name] = s
	catalog.schemas = append(catalog.schemas, s)

	for _, rel := range s.Relationships.All {
		if rel.FieldSchema != nil && rel.FieldSchema != s {
			if err := catalog.add(rel.FieldSchema); err != nil {
				return err
			}
		}
	}
	return nil
}

// Resolve resolves pending relations of every entity, referenced entities first. The first
// failure stops resolution.
func (catalog *Catalog) Resolve(ctx context.Context) error {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	visited := make(map[*schema.Schema]bool, len(catalog.schemas))
	for _, s := range catalog.schemas {
		if err := catalog.resolve(ctx, s, visited); err != nil {
			return err
		}
	}
	return nil
}

func (catalog *Catalog) resolve(ctx context.Context, s *schema.Schema, visited map[*schema.Schema]bool) error {
	if visited[s] {
		return nil
	}
	visited[s] = true

	for _, rel := range s.Relationships.All {
		if rel.FieldSchema != nil {
			if err := catalog.resolve(ctx, rel.FieldSchema, visited); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		begin   = time.Now()
		pending int64
	)

	for _, rel := range s.Relationships.All {
		if !rel.Resolved() {
			pending++
		}
	}

	err := s.ResolveRelationships()
	catalog.Logger.Trace(ctx, begin, func() (string, int64) {
		return s.Name, pending
	}, err)
	return err
}

// Schema returns the entity registered under name
func (catalog *Catalog) Schema(name string) (*schema.Schema, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if s, ok := catalog.byName[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
}

// Schemas entities in registration order
func (catalog *Catalog) Schemas() []*schema.Schema {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	return append([]*schema.Schema(nil), catalog.schemas...)
}
