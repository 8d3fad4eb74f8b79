package export

import "strconv"

// FieldPlan is the ordered list of output columns for one export run. It is
// computed once, after all records are built, and never changes afterwards.
type FieldPlan []string

// BuildFieldPlan starts from the caller-supplied base fields verbatim and
// appends every overridden field not already present, in override
// configuration order.
func BuildFieldPlan(baseFields []string, overrides Overrides, useOverrides bool) FieldPlan {
	plan := make(FieldPlan, len(baseFields))
	copy(plan, baseFields)

	if !useOverrides {
		return plan
	}

	present := make(map[string]bool, len(plan))
	for _, field := range plan {
		present[field] = true
	}
	for _, ov := range overrides {
		if !present[ov.Field] {
			plan = append(plan, ov.Field)
			present[ov.Field] = true
		}
	}
	return plan
}

// WithRolePairs returns a copy of the plan extended with the trailing
// course1, role1, ..., course{n}, role{n} columns.
func (p FieldPlan) WithRolePairs(maxPairs int) FieldPlan {
	plan := make(FieldPlan, len(p), len(p)+2*maxPairs)
	copy(plan, p)
	for i := 1; i <= maxPairs; i++ {
		n := strconv.Itoa(i)
		plan = append(plan, "course"+n, "role"+n)
	}
	return plan
}

// MaxRolePairs returns the widest role-pair count across the records.
// Records with no pairs are excluded from output entirely, so they
// contribute nothing here.
func MaxRolePairs(records []*Record) int {
	max := 0
	for _, record := range records {
		if len(record.Roles) > max {
			max = len(record.Roles)
		}
	}
	return max
}

// maxPairsForRole is MaxRolePairs restricted to one role's subset, used
// when each role gets its own sheet or section.
func maxPairsForRole(records []*Record, role string) int {
	max := 0
	for _, record := range records {
		if n := len(record.pairsForRole(role)); n > max {
			max = n
		}
	}
	return max
}
