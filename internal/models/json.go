package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillingAddress is stored as a jsonb column. A malformed stored blob scans
// to the zero value instead of failing the row read.
type BillingAddress struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a BillingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *BillingAddress) Scan(src interface{}) error {
	*a = BillingAddress{}
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if jsonErr := json.Unmarshal(b, a); jsonErr != nil {
		*a = BillingAddress{}
	}
	return nil
}

// GatewayResponse holds the last normalized notification payload verbatim.
type GatewayResponse map[string]string

func (r GatewayResponse) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(GatewayResponse{})
	}
	return json.Marshal(r)
}

func (r *GatewayResponse) Scan(src interface{}) error {
	*r = GatewayResponse{}
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if jsonErr := json.Unmarshal(b, r); jsonErr != nil {
		*r = GatewayResponse{}
	}
	return nil
}

// StringList backs the gallery image and plan file URL columns.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(StringList{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	*l = StringList{}
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if jsonErr := json.Unmarshal(b, l); jsonErr != nil {
		*l = StringList{}
	}
	return nil
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
