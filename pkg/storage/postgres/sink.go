package postgres

import (
	"context"
	"fmt"

	"perpstracker/internal/perps/history"
	"perpstracker/internal/perps/listings"

	"gorm.io/gorm/clause"
)

// InsertTickerRows mirrors one run's history rows for an exchange. Conflicts
// on (exchange, symbol, date) are skipped so reruns stay idempotent.
func (c *Client) InsertTickerRows(ctx context.Context, exchange string, rows []history.Row) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]TickerRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, TickerRecord{
			Exchange:     exchange,
			Symbol:       row.Symbol,
			Date:         row.Date,
			OpenInterest: row.OpenInterest,
			Volume24h:    row.Volume24h,
		})
	}

	tx := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "exchange"},
			{Name: "symbol"},
			{Name: "date"},
		},
		DoNothing: true,
	}).Create(&records)

	if tx.Error != nil {
		return fmt.Errorf("insert ticker rows for %s: %w", exchange, tx.Error)
	}
	return nil
}

// InsertListingEvents mirrors transition events appended by a reconcile pass.
// The sentinel record never reaches Postgres.
func (c *Client) InsertListingEvents(ctx context.Context, events []listings.Event) error {
	records := make([]ListingEventRecord, 0, len(events))
	for _, ev := range events {
		if ev.Action != listings.ActionListed && ev.Action != listings.ActionDelisted {
			continue
		}
		records = append(records, ListingEventRecord{
			Exchange: ev.Name,
			Symbol:   ev.Symbol,
			Date:     ev.Date,
			Action:   ev.Action,
		})
	}
	if len(records) == 0 {
		return nil
	}

	tx := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "exchange"},
			{Name: "symbol"},
			{Name: "date"},
			{Name: "action"},
		},
		DoNothing: true,
	}).Create(&records)

	if tx.Error != nil {
		return fmt.Errorf("insert listing events: %w", tx.Error)
	}
	return nil
}

// ListingEvents returns the mirrored events for an exchange, oldest first.
func (c *Client) ListingEvents(ctx context.Context, exchange string) ([]ListingEventRecord, error) {
	var records []ListingEventRecord
	err := c.DB.WithContext(ctx).
		Where("exchange = ?", exchange).
		Order("date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
