package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storecogs/internal/tabular"
)

// Store is one entry of the store master list.
type Store struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreNumber   string       `gorm:"column:store_number;size:64;not null;default:'';index" json:"StoreNumber"`
	StoreName     string       `gorm:"column:store_name;size:255;not null;default:''" json:"StoreName"`
	ARL           string       `gorm:"column:arl;size:255;not null;default:''" json:"ARL"`
	ReportingHead string       `gorm:"column:reporting_head;size:255;not null;default:''" json:"ReportingHead"`
	FileName      string       `gorm:"column:file_name;size:255;not null;default:''" json:"fileName"`
	CreatedAt     time.Time    `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Store) TableName() string { return "stores" }

func text(name string, ptr func(*Store) *string) tabular.Field[Store] {
	return tabular.Field[Store]{
		Name:  name,
		Kind:  tabular.KindString,
		Width: 20,
		Set:   func(s *Store, v tabular.Value) { *ptr(s) = v.Text },
		Get:   func(s *Store) any { return *ptr(s) },
	}
}

// Schema maps the store sheet. "Store Number" and friends normalize onto the
// field names, so no aliases are needed.
var Schema = tabular.Schema[Store]{
	text("ReportingHead", func(s *Store) *string { return &s.ReportingHead }),
	text("ARL", func(s *Store) *string { return &s.ARL }),
	text("StoreName", func(s *Store) *string { return &s.StoreName }),
	text("StoreNumber", func(s *Store) *string { return &s.StoreNumber }),
}
