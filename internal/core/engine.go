package core

// Run computes both statistics views from the current records.
// Each view is produced by its own Aggregate call, so accumulators are
// never shared between the class and student groupings. Nothing is cached.
func Run(records []StudentRecord) AggregationResult {
	return AggregationResult{
		ByClass:   Aggregate(records, ByClassKey),
		ByStudent: Aggregate(records, ByNameKey),
	}
}
