package ledger

import (
	"fmt"
	"strings"
)

// Direction is the side of a trade. The journal's stored form uses the
// "Buy"/"Sell" wording of the trade entry form.
type Direction int

const (
	Long Direction = iota + 1
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "Buy"
	case Short:
		return "Sell"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is Long or Short.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// ParseDirection accepts buy/long and sell/short in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long", "b", "l":
		return Long, nil
	case "sell", "short", "s":
		return Short, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", d)
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
