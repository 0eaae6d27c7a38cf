package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/genetics"
)

func testRanchSettings() config.RanchSettings {
	s := config.RanchSettings{
		HabitatCapacity: 2,
		IncomePerMinute: map[genetics.Tier]decimal.Decimal{},
		RitualDuration:  map[genetics.Tier]time.Duration{},
		HatchDuration:   map[genetics.Tier]time.Duration{},
	}
	for _, tier := range genetics.AllTiers {
		s.IncomePerMinute[tier] = decimal.NewFromInt(1)
		s.RitualDuration[tier] = time.Minute
		s.HatchDuration[tier] = time.Minute
	}
	return s
}
