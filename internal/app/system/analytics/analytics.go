// Package analytics derives the dashboard's chart series from loaded
// business and user records.
//
// Every function here is pure: inputs are never modified, output depends
// only on the arguments (including the reference time), and malformed
// records are skipped rather than reported. A record whose createdAt is
// missing or unparseable is left out of the month buckets; a missing price
// counts as 0.
package analytics

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

// Months is the length of the growth and revenue series.
const Months = 6

// TopN is how many businesses TopScanned returns.
const TopN = 10

// NameWidth is the display width, in runes, of a top-scanned name.
const NameWidth = 20

// FallbackCategories is used when the backend category list is empty.
var FallbackCategories = []string{"Restaurant", "Cafe", "Food Mall"}

// MonthPoint is one bucket of the growth series.
type MonthPoint struct {
	Month      string `json:"month"` // 2006-01
	Label      string `json:"label"` // Jan
	Businesses int    `json:"businesses"`
	Users      int    `json:"users"`
}

// RevenuePoint is one bucket of the revenue series.
type RevenuePoint struct {
	Month   string        `json:"month"`
	Label   string        `json:"label"`
	Revenue models.Amount `json:"revenue"`
}

// Slice is one segment of a pie or bar chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PlanStat is the count and summed price of businesses on a plan.
type PlanStat struct {
	Count   int           `json:"count"`
	Revenue models.Amount `json:"revenue"`
}

// PlanBreakdown is the plan distribution overall and per category.
type PlanBreakdown struct {
	Overall map[string]PlanStat            `json:"overall"`
	ByType  map[string]map[string]PlanStat `json:"byType"`
}

// Ranked is one row of the top-scanned ranking.
type Ranked struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Scans    int64  `json:"scans"`
}

// month is a calendar month bucket [start, end).
type month struct {
	start, end time.Time
}

func (m month) contains(t time.Time) bool {
	return !t.Before(m.start) && t.Before(m.end)
}

// trailingMonths returns the Months calendar months ending with the month
// of now, oldest first, in now's location.
func trailingMonths(now time.Time) []month {
	first := MonthOf(now)
	out := make([]month, Months)
	for i := 0; i < Months; i++ {
		start := first.AddDate(0, i-(Months-1), 0)
		out[i] = month{start: start, end: start.AddDate(0, 1, 0)}
	}
	return out
}

// bucketOf returns the index of the bucket containing ts, or -1.
func bucketOf(buckets []month, ts models.Timestamp, loc *time.Location) int {
	t, ok := ts.Time()
	if !ok {
		return -1
	}
	t = t.In(loc)
	for i, b := range buckets {
		if b.contains(t) {
			return i
		}
	}
	return -1
}

// Growth counts businesses and users created in each of the trailing six
// months. Every month appears, oldest first, even when empty.
func Growth(businesses []models.Business, users []models.User, now time.Time) []MonthPoint {
	buckets := trailingMonths(now)
	out := make([]MonthPoint, len(buckets))
	for i, b := range buckets {
		out[i] = MonthPoint{Month: b.start.Format("2006-01"), Label: b.start.Format("Jan")}
	}
	for _, b := range businesses {
		if i := bucketOf(buckets, b.CreatedAt, now.Location()); i >= 0 {
			out[i].Businesses++
		}
	}
	for _, u := range users {
		if i := bucketOf(buckets, u.CreatedAt, now.Location()); i >= 0 {
			out[i].Users++
		}
	}
	return out
}

// Revenue sums the subscription price of businesses created in each of the
// trailing six months. It measures revenue attributed to the month a
// business signed up, not cash collected in that month.
func Revenue(businesses []models.Business, now time.Time) []RevenuePoint {
	buckets := trailingMonths(now)
	out := make([]RevenuePoint, len(buckets))
	for i, b := range buckets {
		out[i] = RevenuePoint{Month: b.start.Format("2006-01"), Label: b.start.Format("Jan")}
	}
	for _, b := range businesses {
		if i := bucketOf(buckets, b.CreatedAt, now.Location()); i >= 0 {
			out[i].Revenue += nonNegative(b.PlanPrice())
		}
	}
	return out
}

// CategoryNames returns the names to group by: the live category list
// when it has any usable names, else FallbackCategories.
func CategoryNames(categories []models.Category) []string {
	seen := make(map[string]struct{}, len(categories))
	var names []string
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return append([]string(nil), FallbackCategories...)
	}
	return names
}

// matchCategory returns the entry of names equal (ignoring case) to raw.
func matchCategory(names []string, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, n := range names {
		if strings.EqualFold(n, raw) {
			return n, true
		}
	}
	return "", false
}

// Categories counts businesses per category. Businesses in a category that
// is not in the list are not counted.
func Categories(businesses []models.Business, categories []models.Category) []Slice {
	names := CategoryNames(categories)
	counts := make(map[string]int, len(names))
	for _, b := range businesses {
		if n, ok := matchCategory(names, b.BusinessCategory); ok {
			counts[n]++
		}
	}
	out := make([]Slice, len(names))
	for i, n := range names {
		out[i] = Slice{Name: n, Value: counts[n]}
	}
	return out
}

// KnownPlan maps a raw plan value to one of models.KnownPlans, ignoring
// case and surrounding space.
func KnownPlan(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, p := range models.KnownPlans {
		if strings.EqualFold(p, raw) {
			return p, true
		}
	}
	return "", false
}

// Plans counts businesses on each known plan. Unknown plan values, and
// businesses without a subscription, are dropped.
func Plans(businesses []models.Business) []Slice {
	overall := PlanDistribution(businesses, nil).Overall
	out := make([]Slice, len(models.KnownPlans))
	for i, p := range models.KnownPlans {
		out[i] = Slice{Name: p, Value: overall[p].Count}
	}
	return out
}

// PlanDistribution aggregates {count, revenue} per known plan, overall and
// per business category.
func PlanDistribution(businesses []models.Business, categories []models.Category) PlanBreakdown {
	names := CategoryNames(categories)
	pb := PlanBreakdown{
		Overall: emptyPlanStats(),
		ByType:  make(map[string]map[string]PlanStat, len(names)),
	}
	for _, n := range names {
		pb.ByType[n] = emptyPlanStats()
	}

	for _, b := range businesses {
		plan, ok := KnownPlan(b.PlanName())
		if !ok {
			continue
		}
		price := nonNegative(b.PlanPrice())

		st := pb.Overall[plan]
		st.Count++
		st.Revenue += price
		pb.Overall[plan] = st

		if cat, ok := matchCategory(names, b.BusinessCategory); ok {
			st := pb.ByType[cat][plan]
			st.Count++
			st.Revenue += price
			pb.ByType[cat][plan] = st
		}
	}
	return pb
}

func emptyPlanStats() map[string]PlanStat {
	m := make(map[string]PlanStat, len(models.KnownPlans))
	for _, p := range models.KnownPlans {
		m[p] = PlanStat{}
	}
	return m
}

// TopScanned ranks businesses by QR scans, highest first, and returns at
// most n (TopN when n <= 0). Ties keep input order.
func TopScanned(businesses []models.Business, n int) []Ranked {
	if n <= 0 {
		n = TopN
	}
	ranked := make([]Ranked, len(businesses))
	for i, b := range businesses {
		ranked[i] = Ranked{
			ID:       b.ID,
			Name:     Truncate(b.Name, NameWidth),
			FullName: b.Name,
			Scans:    int64(b.QRScans),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Scans > ranked[j].Scans })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Truncate shortens s to at most width runes.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width])
}

func nonNegative(a models.Amount) models.Amount {
	if a < 0 {
		return 0
	}
	return a
}
