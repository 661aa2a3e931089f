// Package ledger tracks token usage and derived monetary cost across
// planning-service calls. A single ledger is shared across the sequential
// navigate calls of one flow run so cost accumulates for the whole run.
package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// modelRate is the price per token, split by prompt and completion.
type modelRate struct {
	prompt     float64
	completion float64
}

// priceTable holds USD-per-token rates. Models missing here are charged at
// the FallbackModel rates — cost accounting must never abort a run.
var priceTable = map[string]modelRate{
	"gpt-4o":                   {prompt: 0.0000025, completion: 0.00001},
	"gpt-4o-mini":              {prompt: 0.00000015, completion: 0.0000006},
	"claude-3-5-sonnet-latest": {prompt: 0.000003, completion: 0.000015},
	"claude-3-5-haiku-latest":  {prompt: 0.0000008, completion: 0.000004},
	"gemini-2.5-flash":         {prompt: 0.0000003, completion: 0.0000025},
	"gemini-2.5-pro":           {prompt: 0.00000125, completion: 0.00001},
}

// FallbackModel supplies rates for models absent from the price table.
const FallbackModel = "gpt-4o"

// UsageRecord is one priced planning-service call.
type UsageRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Cost             float64   `json:"cost"`
}

// ModelSummary aggregates the records of one model.
type ModelSummary struct {
	Calls  int     `json:"calls"`
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// Summary is a per-model breakdown plus the grand total. Reporting only;
// control decisions use TotalCost and IsOverBudget.
type Summary struct {
	ByModel map[string]ModelSummary `json:"by_model"`
	Total   ModelSummary            `json:"total"`
}

// Ledger is an append-only usage log. Appends and reads are mutex-guarded so
// concurrent navigate calls may share one instance.
type Ledger struct {
	mu      sync.Mutex
	records []UsageRecord
	log     *zap.Logger
}

// New returns an empty ledger. A nil logger is replaced with a no-op.
func New(log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{log: log}
}

// Record prices one call, appends a UsageRecord and returns it. Unknown
// models fall back to FallbackModel rates with a warning; Record never
// fails.
func (l *Ledger) Record(model string, promptTokens, completionTokens int) UsageRecord {
	rate, ok := priceTable[model]
	if !ok {
		rate = priceTable[FallbackModel]
		l.log.Warn("unknown model in price table, using fallback rates",
			zap.String("model", model),
			zap.String("fallback", FallbackModel))
	}
	rec := UsageRecord{
		Timestamp:        time.Now(),
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             float64(promptTokens)*rate.prompt + float64(completionTokens)*rate.completion,
	}
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec
}

// TotalCost sums all recorded costs.
func (l *Ledger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total float64
	for _, r := range l.records {
		total += r.Cost
	}
	return total
}

// TotalTokens sums prompt and completion tokens over all records.
func (l *Ledger) TotalTokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total int
	for _, r := range l.records {
		total += r.PromptTokens + r.CompletionTokens
	}
	return total
}

// IsOverBudget reports whether the accumulated cost strictly exceeds the
// cap. A run landing exactly on the cap may continue.
func (l *Ledger) IsOverBudget(capUSD float64) bool {
	return l.TotalCost() > capUSD
}

// Summarize groups records by model.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Summary{ByModel: make(map[string]ModelSummary)}
	for _, r := range l.records {
		m := s.ByModel[r.Model]
		m.Calls++
		m.Tokens += r.PromptTokens + r.CompletionTokens
		m.Cost += r.Cost
		s.ByModel[r.Model] = m

		s.Total.Calls++
		s.Total.Tokens += r.PromptTokens + r.CompletionTokens
		s.Total.Cost += r.Cost
	}
	return s
}

// Records returns a copy of the usage log.
func (l *Ledger) Records() []UsageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]UsageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Reset clears all history. Only safe between independent runs.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}
