package domain

import "time"

type AssetClass string

const (
	ClassCurrency AssetClass = "currency"
	ClassGold     AssetClass = "gold"
	ClassSilver   AssetClass = "silver"
	ClassNews     AssetClass = "news"
)

// NumericClasses are the classes that carry a normalized rate.
var NumericClasses = []AssetClass{ClassCurrency, ClassGold, ClassSilver}

func ParseAssetClass(s string) (AssetClass, bool) {
	switch AssetClass(s) {
	case ClassCurrency, ClassGold, ClassSilver, ClassNews:
		return AssetClass(s), true
	}
	return "", false
}

func (c AssetClass) Numeric() bool {
	return c == ClassCurrency || c == ClassGold || c == ClassSilver
}

// AssetQuote is the current row for one tracked asset key.
// Rate is always "1 unit of asset = Rate units of the reference currency".
// Buying/Selling are only populated for metal quotes.
type AssetQuote struct {
	Class         AssetClass `json:"class"`
	Key           string     `json:"key"`
	DisplayName   string     `json:"display_name"`
	Buying        float64    `json:"buying,omitempty"`
	Selling       float64    `json:"selling,omitempty"`
	Rate          float64    `json:"rate"`
	ChangePercent float64    `json:"change_percent"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HistoryPoint is one append-only observation for a key.
type HistoryPoint struct {
	ID         int64      `json:"id"`
	Class      AssetClass `json:"class"`
	Key        string     `json:"key"`
	Rate       float64    `json:"rate"`
	RecordedAt time.Time  `json:"recorded_at"`
}

type UpdateStatus string

const (
	UpdateStatusSuccess UpdateStatus = "success"
	UpdateStatusError   UpdateStatus = "error"
)

// UpdateLog is one audit row per orchestrated stage attempt.
type UpdateLog struct {
	ID        int64        `json:"id"`
	Class     AssetClass   `json:"class"`
	Status    UpdateStatus `json:"status"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}
