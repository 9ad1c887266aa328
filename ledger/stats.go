package ledger

import "time"

// Stats are the dashboard aggregates derived from a ledger state.
type Stats struct {
	StartingBalance float64 `json:"startingBalance"`
	CurrentBalance  float64 `json:"currentBalance"`
	Trades          int     `json:"trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	TotalPnL        float64 `json:"totalPnl"`
	WinRate         float64 `json:"winRate"` // percent
	BestPnL         float64 `json:"bestPnl"`
	WorstPnL        float64 `json:"worstPnl"`
	TradesToday     int     `json:"tradesToday"`
}

// ComputeStats summarises s. "Today" is the calendar day of now in now's
// location.
func ComputeStats(s State, now time.Time) Stats {
	st := Stats{
		StartingBalance: s.StartingBalance,
		CurrentBalance:  s.StartingBalance,
		Trades:          len(s.Records),
	}
	y, m, d := now.Date()
	for i, r := range s.Records {
		st.TotalPnL += r.PnL
		switch {
		case r.PnL > 0:
			st.Wins++
		case r.PnL < 0:
			st.Losses++
		}
		if i == 0 || r.PnL > st.BestPnL {
			st.BestPnL = r.PnL
		}
		if i == 0 || r.PnL < st.WorstPnL {
			st.WorstPnL = r.PnL
		}
		ry, rm, rd := r.Timestamp.In(now.Location()).Date()
		if ry == y && rm == m && rd == d {
			st.TradesToday++
		}
	}
	if n := len(s.Records); n > 0 {
		st.WinRate = float64(st.Wins) / float64(n) * 100
		st.CurrentBalance = s.Records[n-1].RunningBalance
	}
	return st
}

// EquityPoint is one step of the balance curve.
type EquityPoint struct {
	Trade   int       `json:"trade"` // 1-based
	Balance float64   `json:"balance"`
	PnL     float64   `json:"pnl"`
	Date    time.Time `json:"date"`
}

// EquityCurve maps each record to its running balance.
func EquityCurve(records []TradeRecord) []EquityPoint {
	out := make([]EquityPoint, len(records))
	for i, r := range records {
		out[i] = EquityPoint{
			Trade:   i + 1,
			Balance: r.RunningBalance,
			PnL:     r.PnL,
			Date:    r.Timestamp,
		}
	}
	return out
}
