// Package activity classifies customers by how recently they were seen and
// how much they have spent.
package activity

import (
	"math"
	"strings"
	"time"

	"bookstore-service/internal/models"

	"github.com/shopspring/decimal"
)

// Activity statuses
const (
	StatusNeverActive = "Never Active"
	StatusToday       = "Active Today"
	StatusThisWeek    = "Active This Week"
	StatusThisMonth   = "Active This Month"
	StatusInactive    = "Inactive"
	StatusUnknown     = "Unknown"
)

// Tier orders activity statuses from most to least recent
type Tier int

const (
	TierToday Tier = iota
	TierWeek
	TierMonth
	TierInactive
	TierNever
	TierUnknown
)

// ActiveWithinDays is the recency window counted as an active customer
const ActiveWithinDays = 30

// Activity is a recency classification
type Activity struct {
	Status string `json:"status"`
	Tier   Tier   `json:"tier"`
	Color  string `json:"color"`
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
}

// Zone-less forms are wall-clock times in the server's local zone
var localLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the user API emits
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysSince returns whole days elapsed from t to now. Future times count as 0.
func DaysSince(t, now time.Time) int {
	days := int(math.Floor(now.Sub(t).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Status classifies a last-access timestamp. An empty value means the
// customer was never seen.
func Status(lastAccess string, now time.Time) Activity {
	if strings.TrimSpace(lastAccess) == "" {
		return Activity{Status: StatusNeverActive, Tier: TierNever, Color: "gray"}
	}

	last, ok := ParseTimestamp(lastAccess)
	if !ok {
		return Activity{Status: StatusUnknown, Tier: TierUnknown, Color: "gray"}
	}

	return ForDays(DaysSince(last, now))
}

// ForDays classifies a number of days since last access
func ForDays(diffDays int) Activity {
	switch {
	case diffDays == 0:
		return Activity{Status: StatusToday, Tier: TierToday, Color: "green"}
	case diffDays <= 7:
		return Activity{Status: StatusThisWeek, Tier: TierWeek, Color: "blue"}
	case diffDays <= 30:
		return Activity{Status: StatusThisMonth, Tier: TierMonth, Color: "yellow"}
	default:
		return Activity{Status: StatusInactive, Tier: TierInactive, Color: "red"}
	}
}

// IsActive reports whether lastAccess falls within ActiveWithinDays of now
func IsActive(lastAccess string, now time.Time) bool {
	last, ok := ParseTimestamp(lastAccess)
	if !ok {
		return false
	}
	return DaysSince(last, now) <= ActiveWithinDays
}

// CountActive counts customers active within ActiveWithinDays of now
func CountActive(customers []models.Customer, now time.Time) int {
	count := 0
	for _, c := range customers {
		if c.LastAccess != nil && IsActive(*c.LastAccess, now) {
			count++
		}
	}
	return count
}

// Spending tiers
const (
	TierVIP     = "VIP"
	TierPremium = "Premium"
	TierRegular = "Regular"
	TierNew     = "New"
)

var (
	vipThreshold     = decimal.NewFromInt(1_000_000)
	premiumThreshold = decimal.NewFromInt(500_000)
	regularThreshold = decimal.NewFromInt(100_000)
)

// SpendingTier is a classification by cumulative spend
type SpendingTier struct {
	Tier  string `json:"tier"`
	Color string `json:"color"`
}

// Spending classifies a cumulative spend in the store currency. Each tier
// includes its lower bound.
func Spending(total decimal.Decimal) SpendingTier {
	switch {
	case total.GreaterThanOrEqual(vipThreshold):
		return SpendingTier{Tier: TierVIP, Color: "purple"}
	case total.GreaterThanOrEqual(premiumThreshold):
		return SpendingTier{Tier: TierPremium, Color: "blue"}
	case total.GreaterThanOrEqual(regularThreshold):
		return SpendingTier{Tier: TierRegular, Color: "green"}
	default:
		return SpendingTier{Tier: TierNew, Color: "gray"}
	}
}
