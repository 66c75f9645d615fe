package crawler

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a crawl pass. All values
// originate from Viper so the crawler can be configured via files, env
// vars, or CLI flags; the defaults encode the upstream contract and the
// politeness policy.
type Config struct {
	// BaseURL is the storefront root, e.g. https://kaspi.kz/shop.
	BaseURL string
	// RootCatalogPath is the link of the root pseudo-category.
	RootCatalogPath string
	// SearchURL is the product search JSON endpoint.
	SearchURL string
	// OffersURL is the supplier offers JSON endpoint; the product src id is
	// appended as a path segment.
	OffersURL string

	UserAgent string
	City      string
	Zone      string

	PageSize    int
	MaxPages    int
	OffersLimit int

	CardDelay time.Duration
	PageDelay time.Duration
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:         strings.TrimRight(v.GetString("upstream.base_url"), "/"),
		RootCatalogPath: v.GetString("upstream.root_catalog_path"),
		SearchURL:       v.GetString("upstream.search_url"),
		OffersURL:       strings.TrimRight(v.GetString("upstream.offers_url"), "/"),
		UserAgent:       v.GetString("crawler.user_agent"),
		City:            v.GetString("upstream.city"),
		Zone:            v.GetString("upstream.zone"),
		PageSize:        v.GetInt("crawler.page_size"),
		MaxPages:        v.GetInt("crawler.max_pages"),
		OffersLimit:     v.GetInt("crawler.offers_limit"),
		CardDelay:       v.GetDuration("crawler.card_delay"),
		PageDelay:       v.GetDuration("crawler.page_delay"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("upstream.base_url must be set")
	}
	if c.RootCatalogPath == "" {
		return fmt.Errorf("upstream.root_catalog_path must be set")
	}
	if c.SearchURL == "" {
		return fmt.Errorf("upstream.search_url must be set")
	}
	if c.OffersURL == "" {
		return fmt.Errorf("upstream.offers_url must be set")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Zone == "" {
		return fmt.Errorf("upstream.zone must be set")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("crawler.page_size must be > 0")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("crawler.max_pages must be > 0")
	}
	if c.OffersLimit <= 0 {
		return fmt.Errorf("crawler.offers_limit must be > 0")
	}
	if c.CardDelay < 0 || c.PageDelay < 0 {
		return fmt.Errorf("crawler delays must be >= 0")
	}
	return nil
}
