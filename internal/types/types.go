// README: Shared value objects used across modules.
package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ID identifies merchants, riders, orders, and finance records (32 hex chars).
type ID string

func NewID() ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}

// Day is a calendar date used as the ledger key, formatted "2006-01-02".
// Balances, debts, remittances and closings are all keyed by Day.
type Day string

const dayLayout = "2006-01-02"

func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

func Today() Day {
	return DayOf(time.Now())
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

func (d Day) String() string { return string(d) }
