// internal/app/system/analytics/derive.go
package analytics

import (
	"time"

	"github.com/scanmenu/admindesk/internal/domain/models"
)

// Input is the dataset charts are computed over.
type Input struct {
	Businesses []models.Business
	Users      []models.User
	Categories []models.Category

	// TotalBusinesses and TotalUsers are the server-reported totals; they
	// tell the reader how much of the data the charts actually saw.
	TotalBusinesses int
	TotalUsers      int

	Now time.Time
}

// Sample describes the records charts were computed over. When Complete is
// false the series cover only the first Businesses/Users records.
type Sample struct {
	Businesses      int  `json:"businesses"`
	Users           int  `json:"users"`
	TotalBusinesses int  `json:"totalBusinesses"`
	TotalUsers      int  `json:"totalUsers"`
	Complete        bool `json:"complete"`
}

// Derived bundles every chart series.
type Derived struct {
	Growth           []MonthPoint   `json:"growthData"`
	Revenue          []RevenuePoint `json:"revenueData"`
	Categories       []Slice        `json:"categoryData"`
	Plans            []Slice        `json:"planData"`
	PlanDistribution PlanBreakdown  `json:"planDistribution"`
	TopScanned       []Ranked       `json:"topScannedBusinesses"`
	SampleRevenue    models.Amount  `json:"sampleRevenue"`
	Sample           Sample         `json:"sample"`
	ComputedAt       time.Time      `json:"computedAt"`
}

// MonthOf returns the first instant of now's calendar month in now's
// location. Series computed for the same MonthOf cover the same buckets.
func MonthOf(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Derive computes all chart series for in. A zero Now means time.Now().
func Derive(in Input) Derived {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	revenue := Revenue(in.Businesses, now)
	var total models.Amount
	for _, p := range revenue {
		total += p.Revenue
	}
	return Derived{
		Growth:           Growth(in.Businesses, in.Users, now),
		Revenue:          revenue,
		Categories:       Categories(in.Businesses, in.Categories),
		Plans:            Plans(in.Businesses),
		PlanDistribution: PlanDistribution(in.Businesses, in.Categories),
		TopScanned:       TopScanned(in.Businesses, TopN),
		SampleRevenue:    total,
		Sample:           sampleOf(in),
		ComputedAt:       now,
	}
}

func sampleOf(in Input) Sample {
	s := Sample{
		Businesses:      len(in.Businesses),
		Users:           len(in.Users),
		TotalBusinesses: max(in.TotalBusinesses, len(in.Businesses)),
		TotalUsers:      max(in.TotalUsers, len(in.Users)),
	}
	s.Complete = s.Businesses >= s.TotalBusinesses && s.Users >= s.TotalUsers
	return s
}
