package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// DiscountReason is one entry of the static reason catalogue. The catalogue
// is owned by configuration, not by sales — read-only at adjustment time.
type DiscountReason struct {
	ID           string `mapstructure:"id"`
	Label        string `mapstructure:"label"`
	Description  string `mapstructure:"description"`
	RequiresAuth bool   `mapstructure:"requires_auth"`
}

// ReasonCatalog is an injected read-only lookup table for discount reasons.
type ReasonCatalog struct {
	reasons map[string]DiscountReason
}

// Lookup returns the reason for id, or ok=false when it is not catalogued.
func (c *ReasonCatalog) Lookup(id string) (DiscountReason, bool) {
	r, ok := c.reasons[id]
	return r, ok
}

// All returns every catalogued reason, sorted by ID for stable output.
func (c *ReasonCatalog) All() []DiscountReason {
	out := make([]DiscountReason, 0, len(c.reasons))
	for _, r := range c.reasons {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewReasonCatalog builds a catalogue from a reason list. Used directly by
// tests; production code goes through LoadReasonCatalog.
func NewReasonCatalog(reasons []DiscountReason) *ReasonCatalog {
	m := make(map[string]DiscountReason, len(reasons))
	for _, r := range reasons {
		m[r.ID] = r
	}
	return &ReasonCatalog{reasons: m}
}

// LoadReasonCatalog reads the YAML catalogue at path. A missing file is not
// an error — the default catalogue applies, so a bare deployment still has
// the usual reasons available.
func LoadReasonCatalog(path string) (*ReasonCatalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return NewReasonCatalog(defaultReasons()), nil
	}

	var reasons []DiscountReason
	if err := v.UnmarshalKey("reasons", &reasons); err != nil {
		return nil, fmt.Errorf("discount reasons: %w", err)
	}
	if len(reasons) == 0 {
		return NewReasonCatalog(defaultReasons()), nil
	}
	return NewReasonCatalog(reasons), nil
}

func defaultReasons() []DiscountReason {
	return []DiscountReason{
		{ID: "damaged_item", Label: "Damaged item", Description: "Visible damage or packaging defect", RequiresAuth: false},
		{ID: "price_match", Label: "Price match", Description: "Competitor price match", RequiresAuth: false},
		{ID: "loyal_client", Label: "Loyal client", Description: "Courtesy discount for recurring client", RequiresAuth: true},
		{ID: "manager_override", Label: "Manager override", Description: "Discretionary supervisor markdown", RequiresAuth: true},
	}
}
