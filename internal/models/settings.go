package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Settings is the single-row site configuration document edited from the
// admin dashboard. There is never more than one row; saves upsert row id 1.
type Settings struct {
	bun.BaseModel `bun:"table:settings"`

	ID int64 `bun:"id,pk" json:"-"`

	SiteName   string `bun:"site_name,nullzero" json:"siteName"`
	EventTitle string `bun:"event_title,nullzero" json:"eventTitle"`
	Tagline    string `bun:"tagline,nullzero" json:"tagline"`

	EventDateRangeText string `bun:"event_date_range_text,nullzero" json:"eventDateRangeText"`
	EventLocationText  string `bun:"event_location_text,nullzero" json:"eventLocationText"`
	EventAddress       string `bun:"event_address,nullzero" json:"eventAddress"`

	WebsiteURL     string `bun:"website_url,nullzero" json:"websiteUrl"`
	SocialX        string `bun:"social_x,nullzero" json:"socialX"`
	SocialFacebook string `bun:"social_facebook,nullzero" json:"socialFacebook"`

	OrgLogo   string `bun:"org_logo,nullzero" json:"orgLogo"`
	EventLogo string `bun:"event_logo,nullzero" json:"eventLogo"`

	BannerEnabled bool   `bun:"banner_enabled,notnull,default:false" json:"bannerEnabled"`
	BannerImage   string `bun:"banner_image,nullzero" json:"bannerImage"`
	BannerLink    string `bun:"banner_link,nullzero" json:"bannerLink"`

	RegistrationMode   string `bun:"registration_mode,nullzero" json:"registrationMode"`
	RegistrationURL    string `bun:"registration_url,nullzero" json:"registrationUrl"`
	RegistrationNewTab bool   `bun:"registration_new_tab,notnull,default:false" json:"registrationNewTab"`

	EventStartISO string `bun:"event_start_iso,nullzero" json:"eventStartISO"`
	EventEndISO   string `bun:"event_end_iso,nullzero" json:"eventEndISO"`
	Timezone      string `bun:"timezone,nullzero" json:"timezone"`

	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}
