package sales

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a Sale.
type Status int

const (
	StatusStarted  Status = iota // sale created, no items yet
	StatusProgress               // at least one item added
	StatusDone                   // finalized by a downstream checkout flow
	StatusCanceled               // logically deleted
)

// String returns the wire token for the status.
func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusProgress:
		return "progress"
	case StatusDone:
		return "done"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseStatus converts a wire token into a Status. Matching is
// case-insensitive.
func ParseStatus(token string) (Status, error) {
	switch strings.ToLower(token) {
	case "started":
		return StatusStarted, nil
	case "progress":
		return StatusProgress, nil
	case "done":
		return StatusDone, nil
	case "canceled":
		return StatusCanceled, nil
	default:
		return 0, fmt.Errorf("%w: invalid status %q", ErrValidation, token)
	}
}

// MarshalJSON serializes the status as its wire token.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a wire token back into a Status.
func (s *Status) UnmarshalJSON(b []byte) error {
	parsed, err := ParseStatus(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// terminal reports whether item mutation is forbidden in this state.
func (s Status) terminal() bool {
	return s == StatusCanceled || s == StatusDone
}

// Sale represents a client's order aggregate.
type Sale struct {
	ID        string      `json:"id"`
	ClientID  string      `json:"client_id"`
	Status    Status      `json:"status"`
	Items     []*SaleItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SaleItem is a single product line within a Sale. Items are owned by their
// sale and never outlive it.
type SaleItem struct {
	ID        string    `json:"id"`
	SaleID    string    `json:"sale_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
