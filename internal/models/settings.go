package models

import (
	"github.com/uptrace/bun"
)

// SiteSettings is a single-row table (id = 1) holding the organiser's
// site name and description shown on every page.
type SiteSettings struct {
	bun.BaseModel `bun:"table:site_settings"`

	ID              int64  `bun:"id,pk"`
	SiteName        string `bun:"site_name,notnull"`
	SiteDescription string `bun:"site_description"`
}
