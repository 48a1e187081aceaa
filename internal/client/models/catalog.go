package models

import (
	"fmt"
	"strings"
)

// Cover sizes understood by the cover service.
const (
	CoverSmall  = "S"
	CoverMedium = "M"
	CoverLarge  = "L"
)

// CatalogResult is one search hit from the public catalog. It is never
// persisted as is.
type CatalogResult struct {
	Key              string
	Title            string
	Authors          []string
	FirstPublishYear *int
	CoverID          *int
}

// AuthorLine joins the authors for display and storage.
func (r CatalogResult) AuthorLine() string {
	return strings.Join(r.Authors, ", ")
}

// CoverURL derives the cover image URL at size, or "" when the result has no
// cover id.
func (r CatalogResult) CoverURL(coverBaseURL, size string) string {
	if r.CoverID == nil {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", strings.TrimRight(coverBaseURL, "/"), *r.CoverID, size)
}
