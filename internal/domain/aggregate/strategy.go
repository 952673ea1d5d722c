package aggregate

// Strategy identifies how line-item rows are grouped into orders.
type Strategy string

const (
	// StrategyGroupByOrderID groups directly on an existing order
	// identifier column.
	StrategyGroupByOrderID Strategy = "group_by_order_id"

	// StrategyGroupByCustomerDate treats each (customer, calendar day)
	// pair as one synthesized order.
	StrategyGroupByCustomerDate Strategy = "group_by_customer_date"

	// StrategyGroupByCustomerDateSequential refines the customer-date
	// grouping with a maximum inter-row time gap, so one customer-day
	// can yield several orders.
	StrategyGroupByCustomerDateSequential Strategy = "group_by_customer_date_sequential"
)

// String returns the strategy identifier.
func (s Strategy) String() string {
	return string(s)
}

// IsValid reports whether the strategy is one of the known values.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyGroupByOrderID, StrategyGroupByCustomerDate, StrategyGroupByCustomerDateSequential:
		return true
	default:
		return false
	}
}

// AllStrategies returns the strategies in the order they are tried.
func AllStrategies() []Strategy {
	return []Strategy{
		StrategyGroupByOrderID,
		StrategyGroupByCustomerDate,
		StrategyGroupByCustomerDateSequential,
	}
}
