package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Sale is one day of a store's sales sheet.
type Sale struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	Date                *time.Time `gorm:"column:date;index" json:"Date"`
	Year2025            *float64   `gorm:"column:year_2025" json:"Year2025"`
	TaxableSale         *float64   `gorm:"column:taxable_sale" json:"TaxableSale"`
	ExemptSale          *float64   `gorm:"column:exempt_sale" json:"ExemptSale"`
	SalesTax            *float64   `gorm:"column:sales_tax" json:"SalesTax"`
	DeliveryTip         *float64   `gorm:"column:delivery_tip" json:"DeliveryTip"`
	GrandTotal          *float64   `gorm:"column:grand_total" json:"GrandTotal"`
	CashSales           *float64   `gorm:"column:cash_sales" json:"CashSales"`
	WordPay             *float64   `gorm:"column:word_pay" json:"WordPay"`
	Amex                *float64   `gorm:"column:amex" json:"Amex"`
	Doordash            *float64   `gorm:"column:doordash" json:"Doordash"`
	Grubhub             *float64   `gorm:"column:grubhub" json:"Grubhub"`
	Ubereats            *float64   `gorm:"column:ubereats" json:"Ubereats"`
	GiftCard            *float64   `gorm:"column:gift_card" json:"GiftCard"`
	Total               *float64   `gorm:"column:total" json:"Total"`
	Difference          *float64   `gorm:"column:difference" json:"Difference"`
	DepositedCash       *float64   `gorm:"column:deposited_cash" json:"DepositedCash"`
	Expense             *float64   `gorm:"column:expense" json:"Expense"`
	ActualCashPlusMinus *float64   `gorm:"column:actual_cash_plus_minus" json:"ActualCashPlusMinus"`

	FileName   string    `gorm:"column:file_name;size:255;not null;default:''" json:"fileName"`
	TableIndex int       `gorm:"column:table_index;not null;default:0" json:"tableIndex"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime:false;index" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Sale) TableName() string { return "sales" }

// FillTotal copies GrandTotal into Total when the sheet has no Total.
func (s *Sale) FillTotal() {
	if s.Total == nil && s.GrandTotal != nil {
		v := *s.GrandTotal
		s.Total = &v
	}
}
