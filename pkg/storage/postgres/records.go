package postgres

import "time"

// TickerRecord mirrors one daily ticker observation into Postgres.
type TickerRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index: one observation per (exchange, symbol, date)
	Exchange string `gorm:"type:text;not null;index:idx_ticker_exchange;index:idx_exchange_symbol_date,unique"`
	Symbol   string `gorm:"type:text;not null;index:idx_exchange_symbol_date,unique"`
	Date     int64  `gorm:"not null;index:idx_exchange_symbol_date,unique"`

	OpenInterest float64 `gorm:"type:numeric;not null"`
	Volume24h    float64 `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TickerRecord) TableName() string {
	return "ticker_record"
}

// ListingEventRecord mirrors one listings transition event into Postgres.
// The file-based event log stays the source of truth.
type ListingEventRecord struct {
	ID uint `gorm:"primaryKey"`

	Exchange string `gorm:"type:text;not null;index:idx_event_exchange_symbol_date_action,unique"`
	Symbol   string `gorm:"type:text;not null;index:idx_event_exchange_symbol_date_action,unique"`
	Date     int64  `gorm:"not null;index:idx_event_exchange_symbol_date_action,unique"`
	Action   string `gorm:"type:varchar(10);not null;index:idx_event_exchange_symbol_date_action,unique"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (ListingEventRecord) TableName() string {
	return "listing_event_record"
}
