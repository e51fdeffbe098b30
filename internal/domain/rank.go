package domain

type rankTier struct {
	min  int
	name string
}

var rankTiers = []rankTier{
	{1500, "TengokuMaster"},
	{1000, "Diamant"},
	{500, "Platine"},
	{300, "Gold"},
	{200, "Silver"},
}

func RankFromTP(tp int) string {
	for _, t := range rankTiers {
		if tp >= t.min {
			return t.name
		}
	}
	return "Bronze"
}
