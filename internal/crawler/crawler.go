package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/metrics"
	"github.com/marketsnap/catalog-crawler/internal/payload"
)

// categoryPathPrefix marks links that denote category pages; anything else
// ("view all" shortcuts, promo tiles) is not traversed.
const categoryPathPrefix = "c/"

// Engine runs one full crawl pass. It is single-flow by design: every
// upstream round-trip happens sequentially with politeness delays, because
// concurrent fan-out trips the upstream rate limiter.
type Engine struct {
	cfg      Config
	fetch    Fetcher
	store    Store
	images   ImageSink
	notifier Notifier
	ids      IDGenerator
	hasher   Hasher
	clock    Clock
	logger   *zap.Logger
	polite   *Politeness

	session  *Session
	codeToID map[string]string
	knownIDs []CategoryID
	skipped  int
}

// NewEngine constructs an Engine. Nil images/notifier collapse to no-ops.
func NewEngine(
	cfg Config,
	fetcher Fetcher,
	store Store,
	images ImageSink,
	notifier Notifier,
	ids IDGenerator,
	hasher Hasher,
	clock Clock,
	logger *zap.Logger,
) *Engine {
	if images == nil {
		images = NoOpImageSink{}
	}
	if notifier == nil {
		notifier = NoOpNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Engine{
		cfg:      cfg,
		fetch:    fetcher,
		store:    store,
		images:   images,
		notifier: notifier,
		ids:      ids,
		hasher:   hasher,
		clock:    clock,
		logger:   logger,
		polite:   NewPoliteness(cfg.CardDelay, cfg.PageDelay),
		session:  NewSession(store, logger),
	}
}

// Run executes one crawl pass: load the code index, walk the category tree
// depth-first, and publish a completion summary. Anything buffered but not
// yet flushed when an error propagates is discarded; the next pass
// re-derives it.
func (e *Engine) Run(ctx context.Context) error {
	started := e.clock.Now()

	index, err := e.store.CategoryCodeIndex(ctx)
	if err != nil {
		return fmt.Errorf("load category code index: %w", err)
	}
	e.codeToID = index
	e.knownIDs = e.knownIDs[:0]
	for code, raw := range index {
		id, err := ParseCategoryID(raw)
		if err != nil {
			e.logger.Warn("ignoring malformed category id from store",
				zap.String("code", code), zap.String("id", raw), zap.Error(err))
			continue
		}
		e.knownIDs = append(e.knownIDs, id)
	}

	root := CatalogNode{Link: e.cfg.RootCatalogPath}
	if err := e.crawl(ctx, root, ""); err != nil {
		return err
	}

	passID, err := e.ids.NewID()
	if err != nil {
		passID = ""
	}
	cats, prods, sups := e.session.Totals()
	summary := PassSummary{
		PassID:     passID,
		StartedAt:  started,
		FinishedAt: e.clock.Now(),
		Categories: cats,
		Products:   prods,
		Suppliers:  sups,
		Skipped:    e.skipped,
	}
	e.publishSummary(ctx, summary)
	e.logger.Info("crawl pass finished",
		zap.Int("categories", cats),
		zap.Int("products", prods),
		zap.Int("suppliers", sups),
		zap.Int("skipped", e.skipped),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return nil
}

// crawl visits one category node: leaves are harvested and flushed, inner
// nodes recurse into each sub-node in upstream order.
func (e *Engine) crawl(ctx context.Context, node CatalogNode, id CategoryID) error {
	if !strings.HasPrefix(node.Link, categoryPathPrefix) {
		return nil
	}

	page, err := e.fetch.Bytes(ctx, FetchRequest{URL: e.cfg.BaseURL + "/" + node.Link})
	if err != nil {
		return fmt.Errorf("fetch category page %q: %w", node.Link, err)
	}

	var cat CatalogPayload
	if err := payload.Extract(page, payload.CatalogMarker, &cat); err != nil {
		if errors.Is(err, payload.ErrMarkerNotFound) {
			e.logger.Warn("category page without catalog payload", zap.String("link", node.Link))
			return nil
		}
		return fmt.Errorf("extract catalog payload from %q: %w", node.Link, err)
	}

	if len(cat.CategoryInfo.SubNodes) == 0 {
		outcomes, err := e.harvestLeaf(ctx, id, categoryCode(node, cat))
		e.skipped += CountSkipped(outcomes)
		if err != nil {
			return err
		}
		if err := e.session.Flush(ctx); err != nil {
			return err
		}
		return nil
	}

	for _, sub := range cat.CategoryInfo.SubNodes {
		if isAggregateNode(node, cat.CategoryInfo, sub) {
			continue
		}
		childID, fresh, err := e.resolveCategoryID(id, sub)
		if err != nil {
			return fmt.Errorf("allocate id under %q for %q: %w", id, sub.Code, err)
		}
		if fresh {
			metrics.ObserveCategoryDiscovered()
		}
		e.session.AddCategory(Category{
			ID:       childID.String(),
			ParentID: id.String(),
			Code:     sub.Code,
			Name:     sub.Title,
		})
		if err := e.crawl(ctx, sub, childID); err != nil {
			return err
		}
	}
	return nil
}

// resolveCategoryID reuses the id of a previously crawled code or allocates
// the next sibling id, registering it so later siblings see it.
func (e *Engine) resolveCategoryID(parent CategoryID, node CatalogNode) (CategoryID, bool, error) {
	if prior, ok := e.codeToID[node.Code]; ok {
		id, err := ParseCategoryID(prior)
		if err != nil {
			return "", false, err
		}
		return id, false, nil
	}
	id, err := NextChild(parent, e.knownIDs)
	if err != nil {
		return "", false, err
	}
	e.knownIDs = append(e.knownIDs, id)
	e.codeToID[node.Code] = id.String()
	return id, true, nil
}

// isAggregateNode detects the synthetic "all items" entry some categories
// prepend to their sub-node list; it routes back to the listing being
// viewed and must not receive an id of its own.
func isAggregateNode(parent CatalogNode, info CatalogNode, sub CatalogNode) bool {
	if sub.Code == "" {
		return true
	}
	if sub.Link != "" && sub.Link == parent.Link {
		return true
	}
	return sub.Code == info.Code
}

// categoryCode prefers the payload's own code over the traversal node's,
// since the root pseudo-node carries none.
func categoryCode(node CatalogNode, cat CatalogPayload) string {
	if cat.CategoryInfo.Code != "" {
		return cat.CategoryInfo.Code
	}
	return node.Code
}

func (e *Engine) publishSummary(ctx context.Context, summary PassSummary) {
	msg, err := json.Marshal(summary)
	if err != nil {
		e.logger.Error("marshal pass summary", zap.Error(err))
		return
	}
	if err := e.notifier.Publish(ctx, msg); err != nil {
		e.logger.Error("publish pass summary", zap.Error(err))
	}
}
