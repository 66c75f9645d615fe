// Package payload extracts embedded state objects from rendered storefront
// pages. The upstream site assigns hand-authored JavaScript object literals to
// well-known globals inside inline <script> blocks; these literals are close
// to JSON but use unquoted keys, trailing commas, and bare null, so they are
// decoded with a JSON5 parser rather than encoding/json.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/titanous/json5"
)

// Markers for the payloads the crawler consumes.
const (
	CatalogMarker = "BACKEND.components.catalog"
	ItemMarker    = "BACKEND.components.item"
)

// ErrMarkerNotFound reports that no inline script block contained the marker.
var ErrMarkerNotFound = errors.New("payload marker not found in any script block")

// Extract scans the inline script blocks of page for an assignment to marker
// and decodes the object literal on its right-hand side into v.
func Extract(page []byte, marker string, v any) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse page markup: %w", err)
	}

	var (
		found     bool
		decodeErr error
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, marker) {
			return true
		}
		found = true
		literal, err := carveLiteral(text, marker)
		if err != nil {
			decodeErr = err
			return false
		}
		decodeErr = json5.Unmarshal([]byte(literal), v)
		if decodeErr != nil {
			decodeErr = fmt.Errorf("decode %s payload: %w", marker, decodeErr)
		}
		return false
	})

	if !found {
		return ErrMarkerNotFound
	}
	return decodeErr
}

// carveLiteral isolates the object literal assigned to marker. The upstream
// blocks hold a single assignment statement, so everything between the '='
// and the final closing brace is the literal.
func carveLiteral(script, marker string) (string, error) {
	idx := strings.Index(script, marker)
	rest := strings.TrimSpace(script[idx+len(marker):])
	if !strings.HasPrefix(rest, "=") {
		return "", fmt.Errorf("marker %q is not an assignment", marker)
	}
	rest = strings.TrimSpace(rest[1:])

	end := strings.LastIndex(rest, "}")
	if end < 0 || !strings.HasPrefix(rest, "{") {
		return "", fmt.Errorf("marker %q is not followed by an object literal", marker)
	}
	return rest[:end+1], nil
}
