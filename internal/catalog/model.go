// Package catalog lists the bookable services and the maids who perform them.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrServiceNotFound is returned for unknown service ids.
	ErrServiceNotFound = errors.New("service not found")
	// ErrMaidNotFound is returned for unknown maid ids.
	ErrMaidNotFound = errors.New("maid not found")
)

// Service is a bookable household service.
type Service struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    string
	Duration    int
	IsActive    bool
}

// Maid is a service provider.
type Maid struct {
	ID           string
	Name         string
	Image        string
	Rating       float64
	ReviewsCount int
	Skills       []string
	PricePerHour decimal.Decimal
	Verified     bool
	IsActive     bool
}

// HasSkill reports whether the maid lists skill.
func (m Maid) HasSkill(skill string) bool {
	for _, s := range m.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// ServiceFilter narrows ListServices. Results are ordered by name.
type ServiceFilter struct {
	Category   string
	ActiveOnly bool
}

// MaidFilter narrows ListMaids. Results are ordered by rating, best first.
type MaidFilter struct {
	Skill        string
	VerifiedOnly bool
	ActiveOnly   bool
	Limit        int
}

var categorySkills = map[string]string{
	"cleaning":  "Cleaning",
	"cooking":   "Cooking",
	"childcare": "Babysitting",
	"eldercare": "Elderly Care",
}

// SkillForCategory maps a service category to the maid skill it needs.
func SkillForCategory(category string) (string, bool) {
	skill, ok := categorySkills[category]
	return skill, ok
}
