// Package aggregate collapses line-item rows into synthesized
// order-level rows so downstream analytics never double-count
// customers or orders.
package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/commercelens/backend/internal/domain/granularity"
	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/domain/shared"
	"github.com/commercelens/backend/internal/domain/table"
)

// numericFields sum during aggregation; every other mapped field takes
// the first row's value.
var numericFields = map[string]bool{
	"order_total":   true,
	"item_total":    true,
	"quantity":      true,
	"discounts":     true,
	"shipping":      true,
	"taxes":         true,
	"refund_amount": true,
}

var orderIDLikeRe = regexp.MustCompile(`order_?(id|number|no)`)

// Summary describes one aggregation run.
type Summary struct {
	Strategy            Strategy        `json:"strategy"`
	OriginalRows        int             `json:"original_rows"`
	AggregatedRows      int             `json:"aggregated_rows"`
	SkippedRows         int             `json:"skipped_rows"`
	ReductionRatio      float64         `json:"reduction_ratio"`
	AvgItemsPerOrder    float64         `json:"avg_items_per_order"`
	MinItemsPerOrder    int             `json:"min_items_per_order"`
	MaxItemsPerOrder    int             `json:"max_items_per_order"`
	MedianItemsPerOrder float64         `json:"median_items_per_order"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AvgOrderValue       decimal.Decimal `json:"avg_order_value"`
}

// Output is the aggregated table plus its summary.
type Output struct {
	Orders  *table.Table
	Summary Summary
}

// Engine synthesizes orders from line items. Strategies are tried in
// a fixed order and the first applicable one wins.
type Engine struct {
	maxGap time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMaxGap enables the sequential strategy: rows from the same
// customer-day further apart than the gap start a new order.
func WithMaxGap(gap time.Duration) Option {
	return func(e *Engine) { e.maxGap = gap }
}

// NewEngine builds an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate collapses the table's line items into orders. Calling it
// on a table classified order-level is a precondition violation and
// fails, it is never a silent no-op.
func (e *Engine) Aggregate(tbl *table.Table, mappings map[string]string, level granularity.Level) (*Output, error) {
	if level != granularity.LevelLineItem {
		return nil, shared.NewAggregationPreconditionError(
			"table is classified %s; aggregation only applies to line-item data", level)
	}

	valueCol, ok := totalColumn(mappings)
	if !ok {
		return nil, shared.NewAggregationPreconditionError("no total column mapped for aggregation")
	}

	strategy := e.selectStrategy(tbl, mappings)
	var groups []*group
	var skipped int
	var err error
	switch strategy {
	case StrategyGroupByOrderID:
		groups, skipped = e.groupByOrderID(tbl, mappings, valueCol)
	case StrategyGroupByCustomerDate:
		groups, skipped, err = e.groupByCustomerDate(tbl, mappings, valueCol)
	case StrategyGroupByCustomerDateSequential:
		groups, skipped, err = e.groupByCustomerDateSequential(tbl, mappings, valueCol)
	}
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, shared.NewAggregationPreconditionError(
			"no aggregatable rows (%d of %d skipped)", skipped, tbl.RowCount())
	}

	orders := buildOrders(groups, mappings, valueCol)
	summary := buildSummary(strategy, tbl.RowCount(), skipped, groups)
	return &Output{Orders: orders, Summary: summary}, nil
}

// selectStrategy picks the first applicable strategy: a direct order
// identifier beats synthesis, and a configured time gap upgrades the
// customer-date grouping to its sequential refinement.
func (e *Engine) selectStrategy(tbl *table.Table, mappings map[string]string) Strategy {
	if orderIDColumn(tbl, mappings) != "" {
		return StrategyGroupByOrderID
	}
	if e.maxGap > 0 {
		return StrategyGroupByCustomerDateSequential
	}
	return StrategyGroupByCustomerDate
}

// orderIDColumn finds an order-identifier-like column: the mapped one
// if present, otherwise any raw column whose normalized name looks
// like an order id, even when mapping did not claim it.
func orderIDColumn(tbl *table.Table, mappings map[string]string) string {
	if col, ok := mappings["order_id"]; ok && tbl.HasColumn(col) {
		return col
	}
	for _, h := range tbl.Headers() {
		if orderIDLikeRe.MatchString(schema.NormalizeHeader(h)) {
			return h
		}
	}
	return ""
}

func totalColumn(mappings map[string]string) (string, bool) {
	if col, ok := mappings["item_total"]; ok {
		return col, true
	}
	if col, ok := mappings["order_total"]; ok {
		return col, true
	}
	return "", false
}

// group accumulates one synthesized order.
type group struct {
	id     string
	count  int
	total  decimal.Decimal
	sums   map[string]decimal.Decimal
	firsts map[string]string
}

func newGroup(id string) *group {
	return &group{
		id:     id,
		sums:   make(map[string]decimal.Decimal),
		firsts: make(map[string]string),
	}
}

// absorb folds one source row into the group.
func (g *group) absorb(tbl *table.Table, row int, mappings map[string]string, valueCol string) {
	g.count++
	if raw, _ := tbl.Cell(row, valueCol); raw != "" {
		if v, ok := table.ParseDecimal(raw); ok {
			g.total = g.total.Add(v)
		}
	}
	for field, col := range mappings {
		if field == "order_id" || col == valueCol {
			continue
		}
		raw, _ := tbl.Cell(row, col)
		if raw == "" {
			continue
		}
		if numericFields[field] {
			if v, ok := table.ParseDecimal(raw); ok {
				g.sums[field] = g.sums[field].Add(v)
			}
			continue
		}
		if _, seen := g.firsts[field]; !seen {
			g.firsts[field] = raw
		}
	}
}

func (e *Engine) groupByOrderID(tbl *table.Table, mappings map[string]string, valueCol string) ([]*group, int) {
	col := orderIDColumn(tbl, mappings)
	index := make(map[string]*group)
	var order []*group
	skipped := 0
	for i := 0; i < tbl.RowCount(); i++ {
		id, _ := tbl.Cell(i, col)
		if id == "" {
			skipped++
			continue
		}
		g, ok := index[id]
		if !ok {
			g = newGroup(id)
			index[id] = g
			order = append(order, g)
		}
		g.absorb(tbl, i, mappings, valueCol)
	}
	return order, skipped
}

func (e *Engine) groupByCustomerDate(tbl *table.Table, mappings map[string]string, valueCol string) ([]*group, int, error) {
	customerCol, dateCol, err := synthesisColumns(tbl, mappings)
	if err != nil {
		return nil, 0, err
	}

	index := make(map[string]*group)
	var order []*group
	skipped := 0
	for i := 0; i < tbl.RowCount(); i++ {
		customer, _ := tbl.Cell(i, customerCol)
		rawDate, _ := tbl.Cell(i, dateCol)
		ts, ok := table.ParseDate(rawDate)
		if customer == "" || !ok {
			skipped++
			continue
		}
		id := fmt.Sprintf("%s_%s", customer, ts.Format("20060102"))
		g, found := index[id]
		if !found {
			g = newGroup(id)
			index[id] = g
			order = append(order, g)
		}
		g.absorb(tbl, i, mappings, valueCol)
	}
	return order, skipped, nil
}

func (e *Engine) groupByCustomerDateSequential(tbl *table.Table, mappings map[string]string, valueCol string) ([]*group, int, error) {
	customerCol, dateCol, err := synthesisColumns(tbl, mappings)
	if err != nil {
		return nil, 0, err
	}

	type item struct {
		row      int
		customer string
		ts       time.Time
	}
	var items []item
	skipped := 0
	for i := 0; i < tbl.RowCount(); i++ {
		customer, _ := tbl.Cell(i, customerCol)
		rawDate, _ := tbl.Cell(i, dateCol)
		ts, ok := table.ParseDate(rawDate)
		if customer == "" || !ok {
			skipped++
			continue
		}
		items = append(items, item{row: i, customer: customer, ts: ts})
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].customer != items[b].customer {
			return items[a].customer < items[b].customer
		}
		return items[a].ts.Before(items[b].ts)
	})

	var order []*group
	seq := make(map[string]int)
	var current *group
	var prev item
	for i, it := range items {
		day := it.ts.Format("20060102")
		newOrder := i == 0 ||
			it.customer != prev.customer ||
			day != prev.ts.Format("20060102") ||
			it.ts.Sub(prev.ts) > e.maxGap
		if newOrder {
			base := fmt.Sprintf("%s_%s", it.customer, day)
			seq[base]++
			id := base
			if seq[base] > 1 {
				id = fmt.Sprintf("%s_%d", base, seq[base])
			}
			current = newGroup(id)
			order = append(order, current)
		}
		current.absorb(tbl, it.row, mappings, valueCol)
		prev = it
	}
	return order, skipped, nil
}

func synthesisColumns(tbl *table.Table, mappings map[string]string) (string, string, error) {
	customerCol, okCustomer := mappings["customer_id"]
	dateCol, okDate := mappings["order_date"]
	if !okCustomer || !okDate || !tbl.HasColumn(customerCol) || !tbl.HasColumn(dateCol) {
		return "", "", shared.NewAggregationPreconditionError(
			"cannot synthesize orders without mapped customer and date columns")
	}
	return customerCol, dateCol, nil
}

// buildOrders renders the groups as an order-level table. Cells carry
// decimal strings; the validator types them later.
func buildOrders(groups []*group, mappings map[string]string, valueCol string) *table.Table {
	headers := []string{"order_id", "order_total", "item_count"}
	var extras []string
	for field, col := range mappings {
		if field == "order_id" || field == "order_total" || col == valueCol {
			continue
		}
		extras = append(extras, field)
	}
	sort.Strings(extras)
	headers = append(headers, extras...)

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := make([]string, 0, len(headers))
		row = append(row, g.id, g.total.String(), fmt.Sprintf("%d", g.count))
		for _, field := range extras {
			if numericFields[field] {
				row = append(row, g.sums[field].String())
			} else {
				row = append(row, g.firsts[field])
			}
		}
		rows = append(rows, row)
	}
	return table.MustNew(headers, rows)
}

func buildSummary(strategy Strategy, originalRows, skipped int, groups []*group) Summary {
	s := Summary{
		Strategy:     strategy,
		OriginalRows: originalRows,
		SkippedRows:  skipped,
	}
	s.AggregatedRows = len(groups)
	if s.AggregatedRows == 0 {
		return s
	}

	counts := make([]int, 0, len(groups))
	revenue := decimal.Zero
	s.MinItemsPerOrder = groups[0].count
	for _, g := range groups {
		counts = append(counts, g.count)
		revenue = revenue.Add(g.total)
		if g.count < s.MinItemsPerOrder {
			s.MinItemsPerOrder = g.count
		}
		if g.count > s.MaxItemsPerOrder {
			s.MaxItemsPerOrder = g.count
		}
	}
	sort.Ints(counts)
	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		s.MedianItemsPerOrder = float64(counts[mid])
	} else {
		s.MedianItemsPerOrder = float64(counts[mid-1]+counts[mid]) / 2
	}

	s.ReductionRatio = float64(originalRows) / float64(s.AggregatedRows)
	s.AvgItemsPerOrder = float64(originalRows-skipped) / float64(s.AggregatedRows)
	s.TotalRevenue = revenue
	s.AvgOrderValue = revenue.DivRound(decimal.NewFromInt(int64(s.AggregatedRows)), 4)
	return s
}
