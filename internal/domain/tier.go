package domain

// VideoQuality maps a named quality tier to the gateway model aliases that
// can serve it and the credit cost charged per generation. Models are
// listed in fallback order.
type VideoQuality struct {
	ID         string
	Label      string
	CreditCost int
	Models     []string
}

// VideoQualities is the static tier table. Costs derive from the low/high
// pricing split: one credit for standard renders, four for cinematic.
var VideoQualities = []VideoQuality{
	{
		ID:         "standard",
		Label:      "Standard",
		CreditCost: 1,
		Models: []string{
			"wan-video/wan-2.1-1.3b",
			"kwaivgi/kling-v1.6-standard",
		},
	},
	{
		ID:         "cinematic",
		Label:      "Cinematic",
		CreditCost: 4,
		Models: []string{
			"google/veo-2",
			"kwaivgi/kling-v1.6-pro",
		},
	},
}

// VideoQualityByID looks up a tier by id. Unknown ids fall back to the
// standard tier so callers always get a usable model chain.
func VideoQualityByID(id string) (VideoQuality, bool) {
	for _, q := range VideoQualities {
		if q.ID == id {
			return q, true
		}
	}
	return VideoQualities[0], false
}
