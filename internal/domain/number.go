package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number holds a provider numeric field verbatim. CollectAPI is inconsistent
// about encoding rates: some endpoints send JSON numbers, others send strings,
// and string values may use a comma as the decimal separator.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(b)
	return nil
}

// Decimal parses the raw value, normalizing comma decimal separators
// (and thousands points in comma-separated values) before parsing.
func (n Number) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(n))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
