package journal

import (
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/tradejournal/ledger"
)

// Report is the data behind the markdown summary.
type Report struct {
	Title     string
	Currency  string
	Generated time.Time
	Stats     ledger.Stats
	Trades    []ledger.TradeRecord
}

// NewReport summarises s as of now.
func NewReport(s ledger.State, now time.Time, currency string) Report {
	return Report{
		Title:     "Trading Journal",
		Currency:  currency,
		Generated: now,
		Stats:     ledger.ComputeStats(s, now),
		Trades:    s.Records,
	}
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"cell":  markdownCell,
	"money": func(v float64) string { return FormatMoney(v, "USD") },
}).Parse(MarkdownTemplate))

// markdownCell keeps free text from breaking a table row.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}

// WriteMarkdown renders r as markdown. Money is formatted in r.Currency.
func (r Report) WriteMarkdown(w io.Writer) error {
	t, err := reportTemplate.Clone()
	if err != nil {
		return err
	}
	t.Funcs(template.FuncMap{
		"money": func(v float64) string { return FormatMoney(v, r.Currency) },
	})
	return t.Execute(w, r)
}

const MarkdownTemplate = `# {{.Title}}

_Generated {{.Generated.Format "2006-01-02 15:04"}}_

## Summary

| Metric | Value |
|---|---|
| Starting balance | {{money .Stats.StartingBalance}} |
| Account balance | {{money .Stats.CurrentBalance}} |
| Total P&L | {{money .Stats.TotalPnL}} |
| Trades | {{.Stats.Trades}} ({{.Stats.Wins}}W / {{.Stats.Losses}}L) |
| Win rate | {{printf "%.1f" .Stats.WinRate}}% |
| Trades today | {{.Stats.TradesToday}} |
{{- if .Stats.Trades}}
| Best trade | {{money .Stats.BestPnL}} |
| Worst trade | {{money .Stats.WorstPnL}} |
{{- end}}

## Trades
{{if .Trades}}
| # | Date | Symbol | Type | Entry | Exit | Lots | P&L | Balance | Notes |
|---|---|---|---|---|---|---|---|---|---|
{{- range $i, $t := .Trades}}
| {{inc $i}} | {{$t.Timestamp.Format "2006-01-02"}} | {{$t.Symbol}} | {{$t.Direction}} | {{printf "%.2f" $t.EntryPrice}} | {{printf "%.2f" $t.ExitPrice}} | {{printf "%.2f" $t.LotSize}} | {{money $t.PnL}}{{if $t.PnLOverride}}*{{end}} | {{money $t.RunningBalance}} | {{cell $t.Notes}} |
{{- end}}
{{else}}
No trades recorded yet.
{{end}}`
