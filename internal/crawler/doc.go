// Package crawler implements one full crawl pass over the upstream
// marketplace catalog: depth-first category discovery with stable
// hierarchical id allocation, paginated product harvesting at leaf
// categories, product detail and supplier offer extraction, and batched
// idempotent persistence through the Store interface.
package crawler
