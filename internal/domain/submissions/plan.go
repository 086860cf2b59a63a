package submissions

import "github.com/shopspring/decimal"

// BuildPlan prices entries in order against the snapshot in prices. Entries
// with a non-positive quantity are dropped without looking up their type; an
// unknown type on any kept entry fails the whole plan.
func BuildPlan(entries []Entry, prices map[string]decimal.Decimal) (Plan, error) {
	plan := Plan{Lines: make([]Line, 0, len(entries)), Total: decimal.Zero}
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		price, ok := prices[entry.TaskTypeID]
		if !ok {
			return Plan{}, &TaskTypeNotFoundError{ID: entry.TaskTypeID}
		}
		total := price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		plan.Lines = append(plan.Lines, Line{
			TaskTypeID:  entry.TaskTypeID,
			Quantity:    entry.Quantity,
			PriceAtTime: price,
			TotalAmount: total,
			Notes:       entry.Notes,
		})
		plan.Total = plan.Total.Add(total)
	}
	return plan, nil
}

// TaskTypeIDs returns the distinct ids referenced by entries, in first-seen order.
func TaskTypeIDs(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.TaskTypeID]; ok {
			continue
		}
		seen[entry.TaskTypeID] = struct{}{}
		ids = append(ids, entry.TaskTypeID)
	}
	return ids
}
