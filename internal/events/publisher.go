package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atoyeh09/LinkBazar/internal/database"
	"github.com/atoyeh09/LinkBazar/internal/models"
)

// EventType identifies a published event.
type EventType string

const (
	// EventTypeProductScraped is published when a complete product record
	// has been scraped and stored.
	EventTypeProductScraped EventType = "PRODUCT_SCRAPED"
)

// ProductScrapedPayload is the payload of a PRODUCT_SCRAPED event.
type ProductScrapedPayload struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Price       *float64  `json:"price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Source      string    `json:"source"`
}

// Publisher persists complete records and announces them through the
// transactional outbox, so the snapshot and its event commit atomically.
type Publisher struct {
	db        *database.DB
	snapshots *database.SnapshotRepository
	outbox    *database.OutboxRepository
	stream    string
	logger    *slog.Logger
}

func NewPublisher(db *database.DB, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = database.DefaultTargetStream
	}
	return &Publisher{
		db:        db,
		snapshots: database.NewSnapshotRepository(db),
		outbox:    database.NewOutboxRepository(db),
		stream:    stream,
		logger:    logger.With("component", "event_publisher"),
	}
}

// SaveRecord upserts the record's snapshot and enqueues a PRODUCT_SCRAPED
// event in one transaction. It implements scraper.Store.
func (p *Publisher) SaveRecord(ctx context.Context, record *models.ProductRecord) error {
	payload := &ProductScrapedPayload{
		EventID:     uuid.New().String(),
		EventType:   string(EventTypeProductScraped),
		Timestamp:   time.Now(),
		URL:         record.URL,
		Title:       record.Title,
		Price:       record.Price,
		Currency:    record.Currency,
		Description: record.Description,
		Images:      record.Images,
		Source:      "scraper",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := p.snapshots.UpsertWithTx(ctx, tx, record); err != nil {
			return err
		}
		return p.outbox.InsertWithTx(ctx, tx, &database.OutboxEvent{
			AggregateType: "product",
			AggregateID:   record.URL,
			EventType:     string(EventTypeProductScraped),
			Payload:       data,
			TargetStream:  p.stream,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save scraped record: %w", err)
	}

	p.logger.Debug("record saved", "url", record.URL, "event_id", payload.EventID)
	return nil
}
