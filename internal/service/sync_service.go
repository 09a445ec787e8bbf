package service

import (
	"context"

	"github.com/confirmador/internal/logger"
	"github.com/confirmador/internal/shopify"
)

// SyncSummary reports the outcome of one historical pull.
type SyncSummary struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// SyncService pulls historical orders from Shopify into local storage.
// Synced orders are persisted only; no messages are dispatched for them.
type SyncService struct {
	shop   *shopify.Client
	ingest *IngestService
}

func NewSyncService(shop *shopify.Client, ingest *IngestService) *SyncService {
	return &SyncService{shop: shop, ingest: ingest}
}

// PullOrders fetches every order created inside [startDate, endDate] (both
// YYYY-MM-DD, store local time) and upserts them. Individual order failures
// are counted and skipped so one bad payload does not abort the batch.
func (s *SyncService) PullOrders(ctx context.Context, startDate, endDate string) (SyncSummary, error) {
	createdAtMin := startDate + "T00:00:00-03:00"
	createdAtMax := endDate + "T23:59:59-03:00"

	payloads, err := s.shop.ListOrders(ctx, createdAtMin, createdAtMax)
	if err != nil {
		return SyncSummary{}, err
	}

	summary := SyncSummary{Total: len(payloads)}
	for _, payload := range payloads {
		_, created, err := s.ingest.Ingest(payload, SourceSync)
		if err != nil {
			summary.Errors++
			logger.Errorw("sync_order_failed", "shopify_order_id", payload.ID, "error", err)
			continue
		}
		if created {
			summary.New++
		} else {
			summary.Updated++
		}
	}
	logger.Infow("sync_completed",
		"start", startDate, "end", endDate,
		"total", summary.Total, "new", summary.New,
		"updated", summary.Updated, "errors", summary.Errors,
	)
	return summary, nil
}
