package types

import "time"

// SeedCampaign returns the demo campaign shown on a fresh install so
// the dashboard is never empty.
func SeedCampaign() Campaign {
	return Campaign{
		ID:             "1",
		CompanyName:    "EcoSip",
		Niche:          "Sustainable Beverages",
		Services:       "Organic Coffee, Reusable Cups",
		TargetAudience: "Eco-conscious millennials, Coffee lovers",
		BrandVoice:     "Friendly, Earthy, Inspiring",
		CreatedAt:      time.Now(),
	}
}
