package catalog

import "github.com/shopspring/decimal"

// Seed fills repo with the starter catalog shipped in the 000002 migration.
func Seed(repo *MemoryRepository) {
	for _, s := range []Service{
		{Name: "House Cleaning", Description: "Sweeping, mopping and dusting for the whole home", Price: decimal.NewFromInt(199), Category: "cleaning", Duration: 2, IsActive: true},
		{Name: "Cooking", Description: "Home-style meals prepared in your kitchen", Price: decimal.NewFromInt(249), Category: "cooking", Duration: 2, IsActive: true},
		{Name: "Babysitting", Description: "Attentive care for children of all ages", Price: decimal.NewFromInt(299), Category: "childcare", Duration: 4, IsActive: true},
		{Name: "Elderly Care", Description: "Companionship and daily assistance for seniors", Price: decimal.NewFromInt(349), Category: "eldercare", Duration: 4, IsActive: true},
	} {
		repo.AddService(s)
	}
	for _, m := range []Maid{
		{Name: "Sunita Devi", Rating: 4.8, ReviewsCount: 124, Skills: []string{"Cleaning", "Cooking"}, PricePerHour: decimal.NewFromInt(120), Verified: true, IsActive: true},
		{Name: "Lakshmi R", Rating: 4.6, ReviewsCount: 89, Skills: []string{"Babysitting", "Elderly Care"}, PricePerHour: decimal.NewFromInt(150), Verified: true, IsActive: true},
		{Name: "Meena K", Rating: 4.5, ReviewsCount: 57, Skills: []string{"Cooking"}, PricePerHour: decimal.NewFromInt(130), Verified: true, IsActive: true},
		{Name: "Anita S", Rating: 4.2, ReviewsCount: 12, Skills: []string{"Cleaning"}, PricePerHour: decimal.NewFromInt(100), Verified: false, IsActive: true},
	} {
		repo.AddMaid(m)
	}
}
