package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Report is one store's cost-of-goods line for a week. Numeric fields are
// nil when the source cell was missing or not a number.
type Report struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`
	Sr int64        `gorm:"column:sr;not null;uniqueIndex:ux_cogs_reports_sr" json:"Sr"`

	WeekPeriod    string `gorm:"column:week_period;size:64;not null;default:'';uniqueIndex:ux_cogs_reports_natural_key,priority:2" json:"WeekPeriod"`
	Period        string `gorm:"column:period;size:64;not null;default:'';uniqueIndex:ux_cogs_reports_natural_key,priority:3" json:"Period"`
	Week          string `gorm:"column:week;size:255;not null;default:''" json:"Week"`
	DateFrom      string `gorm:"column:date_from;size:255;not null;default:''" json:"DateFrom"`
	To            string `gorm:"column:date_to;size:255;not null;default:''" json:"To"`
	StoreNumber   string `gorm:"column:store_number;size:64;not null;default:'';uniqueIndex:ux_cogs_reports_natural_key,priority:1;index" json:"StoreNumber"`
	StoreName     string `gorm:"column:store_name;size:255;not null;default:''" json:"StoreName"`
	ARL           string `gorm:"column:arl;size:255;not null;default:''" json:"ARL"`
	ReportingHead string `gorm:"column:reporting_head;size:255;not null;default:''" json:"ReportingHead"`

	Sales2025                   *float64 `gorm:"column:sales_2025" json:"Sales2025"`
	Sales2024                   *float64 `gorm:"column:sales_2024" json:"Sales2024"`
	CustomerCount2025           *float64 `gorm:"column:customer_count_2025" json:"CustomerCount2025"`
	CustomerCount2024           *float64 `gorm:"column:customer_count_2024" json:"CustomerCount2024"`
	FoodcostBlueline            *float64 `gorm:"column:foodcost_blueline" json:"FoodcostBlueline"`
	Pepsico                     *float64 `gorm:"column:pepsico" json:"Pepsico"`
	TotalFoodCost               *float64 `gorm:"column:total_food_cost" json:"TotalFoodCost"`
	FoodCostpercent             *float64 `gorm:"column:food_cost_percent" json:"FoodCostpercent"`
	FourWeekFoodCost            *float64 `gorm:"column:four_week_food_cost" json:"FourWeekFoodCost"`
	Wages                       *float64 `gorm:"column:wages" json:"Wages"`
	Wagespercent                *float64 `gorm:"column:wages_percent" json:"Wagespercent"`
	FourWeekWageCost            *float64 `gorm:"column:four_week_wage_cost" json:"FourWeekWageCost"`
	FoodAndLaborPercent         *float64 `gorm:"column:food_and_labor_percent" json:"FoodAndLaborPercent"`
	FourWeekAverageFoodAndLabor *float64 `gorm:"column:four_week_average_food_and_labor" json:"FourWeekAverageFoodAndLabor"`

	FileName  string    `gorm:"column:file_name;size:255;not null;default:''" json:"fileName"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Report) TableName() string { return "cogs_reports" }

// NaturalKey identifies a report independently of its storage identity.
type NaturalKey struct {
	StoreNumber string
	WeekPeriod  string
	Period      string
}

func (r *Report) NaturalKey() NaturalKey {
	return NaturalKey{
		StoreNumber: r.StoreNumber,
		WeekPeriod:  r.WeekPeriod,
		Period:      r.Period,
	}
}

func (k NaturalKey) String() string {
	return strings.Join([]string{k.StoreNumber, k.WeekPeriod, k.Period}, "/")
}

// CopyContent overwrites every content field of r with src, leaving the
// identity, Sr and CreatedAt untouched.
func (r *Report) CopyContent(src *Report) {
	id, sr, created := r.ID, r.Sr, r.CreatedAt
	*r = *src
	r.ID, r.Sr, r.CreatedAt = id, sr, created
}

// StoreMapping is the descriptive data attached to a store number.
type StoreMapping struct {
	StoreNumber   string `json:"StoreNumber"`
	StoreName     string `json:"StoreName"`
	ARL           string `json:"ARL"`
	ReportingHead string `json:"ReportingHead"`
}
