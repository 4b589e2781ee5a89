package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Package struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Price           float64   `db:"price" json:"price"`
	MembershipPrice float64   `db:"membership_price" json:"membership_price"`
	Description     string    `db:"description" json:"description"`
	Features        Features  `db:"features" json:"features"`
	SubscriptionURL string    `db:"subscription_url" json:"subscription_url"`
	DisplayOrder    int       `db:"display_order" json:"display_order"`
	IsFeatured      bool      `db:"is_featured" json:"is_featured"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PackageParams holds every mutable package field. Create and Update both
// write all of them.
type PackageParams struct {
	Name            string
	Price           float64
	MembershipPrice float64
	Description     string
	Features        Features
	SubscriptionURL string
	DisplayOrder    int
	IsFeatured      bool
}

// Features is an ordered feature list stored as a JSON array.
type Features []string

// Value encodes the list as JSON text so it binds to a jsonb parameter.
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (f *Features) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("features: unsupported type %T", src)
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*f = list
	return nil
}

func (f Features) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}
