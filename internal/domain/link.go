package domain

import "time"

// ShortLink maps a short code to its destination URL(s). Rows are
// immutable after creation and are never deleted: expiry is evaluated
// lazily at read time and expired links stay queryable for analytics.
type ShortLink struct {
	ID           int64      `gorm:"primaryKey;column:id" json:"id"`
	Code         string     `gorm:"column:code;size:20;uniqueIndex;not null" json:"code"`
	Destination  string     `gorm:"column:destination;size:2048;not null" json:"destination"`
	DestinationB *string    `gorm:"column:destination_b;size:2048" json:"destination_b,omitempty"`
	SplitPercent *float64   `gorm:"column:split_percent" json:"split_percent,omitempty"` // traffic share of variant A, 0-100
	CustomAlias  bool       `gorm:"column:custom_alias;not null;default:false" json:"custom_alias"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`

	Clicks []ClickEvent `gorm:"foreignKey:ShortLinkCode;references:Code" json:"clicks,omitempty"`
}

// TableName returns the table name for GORM.
func (ShortLink) TableName() string {
	return "short_links"
}

// Expired reports whether the link is past its TTL at the given instant.
// Links without expires_at never expire.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// HasVariant reports whether the link carries an A/B configuration.
func (l *ShortLink) HasVariant() bool {
	return l.DestinationB != nil && l.SplitPercent != nil
}
