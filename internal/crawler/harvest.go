package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/metrics"
)

// harvestLeaf pages the product search endpoint for one leaf category and
// extracts every card it returns. Only the page ceiling or an empty result
// set stops the loop; a card that fails to process is recorded as a skip
// and the page continues.
func (e *Engine) harvestLeaf(ctx context.Context, categoryID CategoryID, code string) ([]ItemOutcome, error) {
	var outcomes []ItemOutcome

	for page := 1; page <= e.cfg.MaxPages; page++ {
		if page > 1 {
			if err := e.polite.WaitPage(ctx); err != nil {
				return outcomes, err
			}
		}

		query := url.Values{
			"q":    {fmt.Sprintf(":category:%s:availableInZones:%s", code, e.cfg.Zone)},
			"sort": {"relevance"},
			"page": {strconv.Itoa(page)},
			"i":    {strconv.Itoa(e.cfg.PageSize)},
		}
		if e.cfg.City != "" {
			query.Set("c", e.cfg.City)
		}

		var results SearchPage
		if err := e.fetch.JSON(ctx, FetchRequest{URL: e.cfg.SearchURL, Query: query}, &results); err != nil {
			return outcomes, fmt.Errorf("search page %d of %q: %w", page, code, err)
		}
		if len(results.Data) == 0 {
			break
		}

		for _, card := range results.Data {
			if err := e.polite.WaitCard(ctx); err != nil {
				return outcomes, err
			}
			outcome := e.extractProduct(ctx, categoryID, card)
			outcomes = append(outcomes, outcome)
			if outcome.Skipped {
				metrics.ObserveItemSkipped(outcome.Reason)
				e.logger.Warn("product card skipped",
					zap.String("category", categoryID.String()),
					zap.String("src_id", outcome.SrcID),
					zap.String("reason", outcome.Reason),
					zap.Error(outcome.Err),
				)
				continue
			}
			metrics.ObserveProductHarvested()
		}
	}

	e.logger.Info("leaf category harvested",
		zap.String("category", categoryID.String()),
		zap.String("code", code),
		zap.Int("cards", len(outcomes)),
		zap.Int("skipped", CountSkipped(outcomes)),
	)
	return outcomes, nil
}
