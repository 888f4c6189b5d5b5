// Package demo carries a small fixed dataset used to populate an empty store
// for local development and the render command.
package demo

import (
	"context"
	_ "embed"
	"fmt"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/ingest"
	"graphite/backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var rawData []byte

// Viewer is a portfolio owner
type Viewer struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Firm      string   `yaml:"firm"`
	Portfolio []string `yaml:"portfolio"`
}

// Person is an attendee row with a fixed id
type Person struct {
	ID            string `yaml:"id"`
	ingest.Record `yaml:",inline"`
}

// Dataset is the decoded demo data
type Dataset struct {
	Viewers     []Viewer            `yaml:"viewers"`
	Companies   []graph.Company     `yaml:"companies"`
	Events      []graph.Event       `yaml:"events"`
	People      []Person            `yaml:"people"`
	Attendance  map[string][]string `yaml:"attendance"`
	Connections [][2]string         `yaml:"connections"`
}

// Load decodes the embedded dataset
func Load() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawData, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode demo data: %w", err)
	}
	return &ds, nil
}

// Viewer returns the viewer with the given id
func (d *Dataset) Viewer(id string) (Viewer, bool) {
	for _, v := range d.Viewers {
		if v.ID == id {
			return v, true
		}
	}
	return Viewer{}, false
}

// Seed writes the embedded dataset into a store. Every write merges, so
// seeding twice leaves the store unchanged.
func Seed(ctx context.Context, store graph.Store) error {
	ds, err := Load()
	if err != nil {
		return err
	}
	return ds.Seed(ctx, store)
}

// Seed writes the dataset into a store
func (d *Dataset) Seed(ctx context.Context, store graph.Store) error {
	log := logger.Named("demo")

	for _, c := range d.Companies {
		c.Key = graph.NormalizeCompany(c.Name)
		if err := store.UpsertCompany(ctx, c); err != nil {
			return fmt.Errorf("failed to seed company %s: %w", c.Name, err)
		}
	}

	for _, e := range d.Events {
		if err := store.UpsertEvent(ctx, e); err != nil {
			return fmt.Errorf("failed to seed event %s: %w", e.ID, err)
		}
	}

	for _, p := range d.People {
		person, history, ok := p.Normalize()
		if !ok {
			continue
		}
		person.ID = p.ID
		if err := store.UpsertPerson(ctx, person); err != nil {
			return fmt.Errorf("failed to seed person %s: %w", p.ID, err)
		}
		for _, e := range history {
			e.PersonID = p.ID
			if err := store.UpsertCompany(ctx, graph.Company{Key: e.CompanyKey, Name: e.Company}); err != nil {
				return fmt.Errorf("failed to seed company %s: %w", e.Company, err)
			}
			if err := store.UpsertEmployment(ctx, e); err != nil {
				return fmt.Errorf("failed to seed employment of %s: %w", p.ID, err)
			}
		}
	}

	for eventID, personIDs := range d.Attendance {
		for _, id := range personIDs {
			if err := store.UpsertAttendance(ctx, id, eventID); err != nil {
				return fmt.Errorf("failed to seed attendance of %s: %w", id, err)
			}
		}
	}

	for _, pair := range d.Connections {
		if _, err := store.UpsertAcquaintance(ctx, pair[0], pair[1]); err != nil {
			return fmt.Errorf("failed to seed connection %s-%s: %w", pair[0], pair[1], err)
		}
	}

	for _, v := range d.Viewers {
		if err := store.SetPortfolio(ctx, v.ID, v.Portfolio); err != nil {
			return fmt.Errorf("failed to seed portfolio of %s: %w", v.ID, err)
		}
	}

	log.Info("Demo data seeded",
		zap.Int("events", len(d.Events)),
		zap.Int("people", len(d.People)),
		zap.Int("connections", len(d.Connections)),
	)
	return nil
}
