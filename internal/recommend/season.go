// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// MonthSet is a set of calendar months stored as a bitmask (bit m for month m).
type MonthSet uint16

const allMonths MonthSet = 0x1FFE // bits 1..12

// NewMonthSet builds a set from months. Values outside 1..12 are ignored.
func NewMonthSet(months ...time.Month) MonthSet {
	var s MonthSet
	for _, m := range months {
		s = s.With(m)
	}
	return s
}

// MonthRange returns every month from start to end inclusive, wrapping
// across the year boundary when end < start (Nov..Feb = {11,12,1,2}).
func MonthRange(start, end time.Month) MonthSet {
	if start < time.January || start > time.December || end < time.January || end > time.December {
		return 0
	}
	var s MonthSet
	for m := start; ; m = m%12 + 1 {
		s = s.With(m)
		if m == end {
			break
		}
	}
	return s
}

// With returns the set plus m.
func (s MonthSet) With(m time.Month) MonthSet {
	if m < time.January || m > time.December {
		return s
	}
	return s | 1<<uint(m)
}

// Contains reports whether m is in the set.
func (s MonthSet) Contains(m time.Month) bool {
	if m < time.January || m > time.December {
		return false
	}
	return s&(1<<uint(m)) != 0
}

// Empty reports whether the set has no months.
func (s MonthSet) Empty() bool {
	return s&allMonths == 0
}

// Union returns s with every month of o added.
func (s MonthSet) Union(o MonthSet) MonthSet {
	return (s | o) & allMonths
}

// Months returns the members in calendar order.
func (s MonthSet) Months() []time.Month {
	out := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		if s.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// MarshalJSON encodes the set as an ascending list of month numbers.
func (s MonthSet) MarshalJSON() ([]byte, error) {
	months := s.Months()
	nums := make([]int, len(months))
	for i, m := range months {
		nums[i] = int(m)
	}
	return json.Marshal(nums)
}

// UnmarshalJSON accepts a list of month numbers or season names.
func (s *MonthSet) UnmarshalJSON(b []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("seasonal months: %w", err)
	}
	var set MonthSet
	for _, v := range raw {
		switch x := v.(type) {
		case float64:
			m := time.Month(int(x))
			if m < time.January || m > time.December || float64(int(x)) != x {
				return fmt.Errorf("seasonal months: invalid month %v", x)
			}
			set = set.With(m)
		case string:
			season, err := ParseSeason(x)
			if err != nil {
				return fmt.Errorf("seasonal months: %w", err)
			}
			set = set.Union(season.Months())
		default:
			return fmt.Errorf("seasonal months: unsupported value %v", v)
		}
	}
	*s = set
	return nil
}

// String renders the set as a comma-separated list of month numbers.
func (s MonthSet) String() string {
	months := s.Months()
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = fmt.Sprintf("%d", int(m))
	}
	return strings.Join(parts, ",")
}

// Season is a meteorological season in the northern hemisphere.
type Season int

const (
	// Spring is March through May.
	Spring Season = iota + 1
	// Summer is June through August.
	Summer
	// Autumn is September through November.
	Autumn
	// Winter is December through February.
	Winter
)

// String returns the canonical season name.
func (s Season) String() string {
	switch s {
	case Spring:
		return "SPRING"
	case Summer:
		return "SUMMER"
	case Autumn:
		return "AUTUMN"
	case Winter:
		return "WINTER"
	default:
		return "UNKNOWN"
	}
}

// Months returns the months of the season.
func (s Season) Months() MonthSet {
	switch s {
	case Spring:
		return MonthRange(time.March, time.May)
	case Summer:
		return MonthRange(time.June, time.August)
	case Autumn:
		return MonthRange(time.September, time.November)
	case Winter:
		return MonthRange(time.December, time.February)
	default:
		return 0
	}
}

// SeasonOf returns the season containing m.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	case time.December, time.January, time.February:
		return Winter
	default:
		return 0
	}
}

// ParseSeason parses a case-insensitive season name. FALL is accepted for Autumn.
func ParseSeason(s string) (Season, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SPRING":
		return Spring, nil
	case "SUMMER":
		return Summer, nil
	case "AUTUMN", "FALL":
		return Autumn, nil
	case "WINTER":
		return Winter, nil
	default:
		return 0, fmt.Errorf("unknown season %q", s)
	}
}

// IsInSeason reports whether asOf's month falls inside the product's seasonal
// window. Products without a window are never in season.
func IsInSeason(p Product, asOf time.Time) bool {
	return p.SeasonalMonths.Contains(asOf.Month())
}

// FilterInSeason returns the products in season at asOf, preserving order.
func FilterInSeason(products []Product, asOf time.Time) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if IsInSeason(products[i], asOf) {
			out = append(out, products[i])
		}
	}
	return out
}

// UpcomingInSeason returns products in season at asOf+lookahead that are not
// in season at asOf.
func UpcomingInSeason(products []Product, asOf time.Time, lookahead time.Duration) []Product {
	later := asOf.Add(lookahead)
	out := make([]Product, 0)
	for i := range products {
		if IsInSeason(products[i], later) && !IsInSeason(products[i], asOf) {
			out = append(out, products[i])
		}
	}
	return out
}

// sortByPopularity orders products by PurchaseCount desc, then ID asc.
func sortByPopularity(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].PurchaseCount != products[j].PurchaseCount {
			return products[i].PurchaseCount > products[j].PurchaseCount
		}
		return products[i].ID < products[j].ID
	})
}
