// Package fixtures holds the typed mock marketplace data used to seed
// in-memory stores and empty databases.
package fixtures

import (
	"fmt"
	"os"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/core"
	"gopkg.in/yaml.v3"
)

// Set is one complete fixture snapshot.
type Set struct {
	Creators     []core.Creator     `yaml:"creators" json:"creators"`
	Projects     []core.Project     `yaml:"projects" json:"projects"`
	Applications []core.Application `yaml:"applications" json:"applications"`
}

// Validate checks every entity and the references between them.
func (s Set) Validate() error {
	seen := make(map[string]struct{})
	check := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s without id", kind)
		}
		key := kind + "/" + id
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[key] = struct{}{}
		return nil
	}

	for _, c := range s.Creators {
		if err := check("creator", c.ID); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("creator %s: %w", c.ID, err)
		}
	}
	for _, p := range s.Projects {
		if err := check("project", p.ID); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
	}
	for _, a := range s.Applications {
		if err := check("application", a.ID); err != nil {
			return err
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("application %s: %w", a.ID, err)
		}
		if _, ok := seen["project/"+a.ProjectID]; !ok {
			return fmt.Errorf("application %s references unknown project %q", a.ID, a.ProjectID)
		}
	}
	return nil
}

// Load reads a fixture set from a YAML file and validates it.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading fixtures: %w", err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("parsing fixtures: %w", err)
	}
	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("invalid fixtures: %w", err)
	}
	return set, nil
}

// Default returns the built-in fixtures. The creator directory starts empty;
// creators only appear once they finish onboarding.
func Default() Set {
	base := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	return Set{
		Creators: []core.Creator{},
		Projects: []core.Project{
			{
				ID:              "1",
				Title:           "Luxury Condo Photography",
				Description:     "Twilight and interior photography for a newly renovated two-bedroom condo.",
				PropertyAddress: "123 Main St, Austin, TX",
				PropertyType:    "condo",
				Budget:          75000,
				Status:          core.ProjectOpen,
				Deadline:        base.AddDate(0, 0, 14),
				ManagerID:       "pm-1",
				CreatedAt:       base,
			},
			{
				ID:              "2",
				Title:           "Apartment Complex Video Tour",
				Description:     "Walkthrough video and drone flyover of the amenity deck and three model units.",
				PropertyAddress: "456 Oak Ave, Denver, CO",
				PropertyType:    "multifamily",
				Budget:          180000,
				Status:          core.ProjectOpen,
				Deadline:        base.AddDate(0, 0, 21),
				ManagerID:       "pm-1",
				CreatedAt:       base.Add(26 * time.Hour),
			},
			{
				ID:              "3",
				Title:           "Vacation Rental Refresh",
				Description:     "Updated listing photos and a floor plan for a short-term rental cabin.",
				PropertyAddress: "789 Pine Rd, Asheville, NC",
				PropertyType:    "single_family",
				Budget:          45000,
				Status:          core.ProjectInProgress,
				Deadline:        base.AddDate(0, 0, 7),
				ManagerID:       "pm-2",
				CreatedAt:       base.Add(50 * time.Hour),
			},
		},
		Applications: []core.Application{
			{
				ID:           "1",
				ProjectID:    "1",
				CreatorID:    "creator-1",
				CreatorName:  "Emily Johnson",
				Message:      "I specialise in twilight condo shoots and can deliver edited photos in 48 hours.",
				ProposedRate: 70000,
				Status:       core.ApplicationPending,
				SubmittedAt:  base.Add(4 * time.Hour),
			},
			{
				ID:           "2",
				ProjectID:    "1",
				CreatorID:    "creator-2",
				CreatorName:  "Marcus Lee",
				Message:      "Licensed drone pilot with a portfolio of downtown high-rise listings.",
				ProposedRate: 80000,
				Status:       core.ApplicationPending,
				SubmittedAt:  base.Add(6 * time.Hour),
			},
			{
				ID:           "3",
				ProjectID:    "2",
				CreatorID:    "creator-3",
				CreatorName:  "Sofia Martinez",
				Message:      "Cinematic walkthroughs with gimbal and FPV drone, music licensing included.",
				ProposedRate: 175000,
				Status:       core.ApplicationAccepted,
				SubmittedAt:  base.Add(30 * time.Hour),
			},
		},
	}
}
