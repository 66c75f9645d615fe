package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/payload"
)

// extractProduct turns one search card into a buffered Product plus its
// supplier offers. Detail-page and image failures degrade to skips or nil
// fields; a supplier offers failure surfaces as a skip outcome because the
// offer set is integral to the product.
func (e *Engine) extractProduct(ctx context.Context, categoryID CategoryID, card ProductCard) ItemOutcome {
	page, err := e.fetch.Bytes(ctx, FetchRequest{URL: joinLink(e.cfg.BaseURL, card.ShopLink)})
	if err != nil {
		return skipOutcome(card.ID, card.Title, "fetch detail page", err)
	}

	var item ItemPayload
	if err := payload.Extract(page, payload.ItemMarker, &item); err != nil {
		if errors.Is(err, payload.ErrMarkerNotFound) {
			return skipOutcome(card.ID, card.Title, "detail payload missing", err)
		}
		return skipOutcome(card.ID, card.Title, "detail payload malformed", err)
	}

	srcID := item.Card.ID
	if srcID == "" {
		srcID = card.ID
	}
	name := item.Card.Title
	if name == "" {
		name = card.Title
	}

	id, err := e.store.LookupProductID(ctx, srcID, name)
	if err != nil {
		return skipOutcome(srcID, name, "resolve product id", err)
	}
	if id == "" {
		id, err = e.ids.NewID()
		if err != nil {
			return skipOutcome(srcID, name, "generate product id", err)
		}
	}

	product := Product{
		ID:              id,
		SrcID:           srcID,
		CategoryID:      categoryID.String(),
		Name:            name,
		Image:           e.storeImage(ctx, item.Card.PrimaryImage()),
		Rating:          NormalizeRating(item.Card.Rating),
		Description:     normalizeDescription(item.Card.Description),
		Characteristics: serializeCharacteristics(item.Card.Specifications),
		ObservedAt:      e.clock.Now(),
	}
	e.session.AddProduct(product)

	if err := e.extractSuppliers(ctx, id, srcID); err != nil {
		return skipOutcome(srcID, name, "supplier offers", err)
	}
	return okOutcome(srcID, name)
}

// extractSuppliers fetches the competing merchant offers for a product in
// the configured city/zone context and buffers one row per merchant. Errors
// propagate: offers are required data and must never be dropped silently.
func (e *Engine) extractSuppliers(ctx context.Context, productID, srcID string) error {
	body, err := json.Marshal(map[string]any{
		"cityId": e.cfg.City,
		"limit":  e.cfg.OffersLimit,
		"page":   0,
		"zoneId": []string{e.cfg.Zone},
	})
	if err != nil {
		return fmt.Errorf("marshal offers request: %w", err)
	}

	var offers OffersPage
	req := FetchRequest{URL: e.cfg.OffersURL + "/" + srcID, JSONBody: body}
	if err := e.fetch.JSON(ctx, req, &offers); err != nil {
		return fmt.Errorf("fetch offers for %s: %w", srcID, err)
	}

	for _, offer := range offers.Offers {
		e.session.AddSupplier(SupplierOffer{
			ProductID: productID,
			Name:      offer.MerchantName,
			Price:     offer.Price,
			Rating:    NormalizeRating(offer.MerchantRating),
		})
	}
	return nil
}

// storeImage downloads the primary gallery image and hands it to the image
// sink. Any failure yields a nil reference; an image is never worth
// aborting the product for.
func (e *Engine) storeImage(ctx context.Context, imageURL string) *string {
	if imageURL == "" {
		return nil
	}
	data, err := e.fetch.Bytes(ctx, FetchRequest{URL: imageURL})
	if err != nil {
		e.logger.Warn("image download failed", zap.String("url", imageURL), zap.Error(err))
		return nil
	}
	digest, err := e.hasher.Hash([]byte(imageURL))
	if err != nil {
		e.logger.Warn("image name digest failed", zap.String("url", imageURL), zap.Error(err))
		return nil
	}
	ref, err := e.images.Store(ctx, data, digest+imageExt(imageURL))
	if err != nil {
		e.logger.Warn("image store failed", zap.String("url", imageURL), zap.Error(err))
		return nil
	}
	if ref == "" {
		return nil
	}
	return &ref
}

// normalizeDescription collapses runs of whitespace; an empty result means
// the product has no description.
func normalizeDescription(s string) *string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	out := strings.Join(fields, " ")
	return &out
}

// serializeCharacteristics re-serializes the permissively parsed
// specification tree as canonical JSON; anything unserializable is stored
// as unknown rather than failing the product.
func serializeCharacteristics(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	out := string(data)
	if out == "null" || out == "{}" || out == "[]" {
		return nil
	}
	return &out
}

func joinLink(base, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(link, "/")
}

func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".jpg"
}
