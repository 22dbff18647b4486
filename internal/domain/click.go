package domain

import "time"

// ClickEvent is one resolved access of a short link. Events are
// append-only: they are never updated or deleted, and every event
// references a ShortLink that existed when it was recorded.
type ClickEvent struct {
	ID            int64     `gorm:"primaryKey;column:id" json:"id"`
	ShortLinkCode string    `gorm:"column:short_link_code;size:20;not null;index" json:"short_link_code"`
	ClickedAt     time.Time `gorm:"column:clicked_at;index;not null" json:"clicked_at"`

	// ClientID is a hash derived from the source IP, used for unique
	// visitor counting without storing a reversible identifier.
	ClientID  string  `gorm:"column:client_id;size:64;index" json:"client_id"`
	IPAddress *string `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"column:user_agent;size:512" json:"user_agent,omitempty"`
	Referer   *string `gorm:"column:referer;size:2048" json:"referer,omitempty"`

	// VariantServed is "A" or "B" for variant-configured links, NULL
	// otherwise.
	VariantServed *string `gorm:"column:variant_served;size:1" json:"variant_served,omitempty"`

	// Enrichment output. Each field is independently nullable: parsing
	// or geo lookup may fail without the event being dropped.
	Device  *string `gorm:"column:device;size:50" json:"device,omitempty"`
	Browser *string `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS      *string `gorm:"column:os;size:50" json:"os,omitempty"`
	Country *string `gorm:"column:country;size:100" json:"country,omitempty"`
	City    *string `gorm:"column:city;size:100" json:"city,omitempty"`
}

// TableName returns the table name for GORM.
func (ClickEvent) TableName() string {
	return "click_events"
}
