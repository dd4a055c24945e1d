package catalog

import "context"

// TopMaidsLimit is how many maids the home screen shows.
const TopMaidsLimit = 5

// Catalog serves the browse screens.
type Catalog struct {
	repo Repository
}

// NewCatalog creates a catalog service over repo.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Services lists services in category (all when empty), optionally only active ones.
func (c *Catalog) Services(ctx context.Context, category string, activeOnly bool) ([]Service, error) {
	return c.repo.ListServices(ctx, ServiceFilter{Category: category, ActiveOnly: activeOnly})
}

// TopMaids returns the best rated verified, active maids.
func (c *Catalog) TopMaids(ctx context.Context) ([]Maid, error) {
	return c.repo.ListMaids(ctx, MaidFilter{VerifiedOnly: true, ActiveOnly: true, Limit: TopMaidsLimit})
}

// MaidsForCategory returns verified maids whose skills cover category. Unknown
// categories apply no skill filter.
func (c *Catalog) MaidsForCategory(ctx context.Context, category string) ([]Maid, error) {
	filter := MaidFilter{VerifiedOnly: true}
	if skill, ok := SkillForCategory(category); ok {
		filter.Skill = skill
	}
	return c.repo.ListMaids(ctx, filter)
}

// Service fetches one service.
func (c *Catalog) Service(ctx context.Context, id string) (Service, error) {
	return c.repo.GetService(ctx, id)
}

// Maid fetches one maid.
func (c *Catalog) Maid(ctx context.Context, id string) (Maid, error) {
	return c.repo.GetMaid(ctx, id)
}
