package migrator

type (
	// Step is a single forward statement and the rollback statement at the
	// same position, if any.
	Step struct {
		// Forward is "" only for trailing steps of a rollback file that has more
		// statements than its migration. Parsed statements are never empty.
		Forward  string
		Rollback *string
	}

	// StepGroup is a run of steps executed together. A transactional group
	// shares one transaction.
	StepGroup struct {
		Steps         []*Step
		Transactional bool
	}

	// PairingPolicy decides what happens when the forward and rollback files
	// contain a different number of statements.
	PairingPolicy int
)

const (
	// PairingLenient pairs statements by position and leaves the missing side
	// empty.
	PairingLenient PairingPolicy = iota

	// PairingStrict rejects migrations whose forward and rollback statement
	// counts differ, unless one side is empty.
	PairingStrict
)

// HasForward reports whether the step has a forward statement to apply.
func (s *Step) HasForward() bool {
	return s.Forward != ""
}

// HasRollback reports whether the step has a rollback statement.
func (s *Step) HasRollback() bool {
	return s.Rollback != nil
}

func (p PairingPolicy) String() string {
	if p == PairingStrict {
		return "strict"
	}

	return "lenient"
}

// CollectSteps pairs forward and rollback statements by index. Positions past
// the end of the shorter list get an empty forward or a nil rollback.
//
// When useTransactions is true every step goes into a single transactional
// group. Otherwise each step is its own non-transactional group. No statements
// means no groups.
//
// Example:
//
//	groups := migrator.CollectSteps(
//		[]string{"CREATE TABLE a (id INT);", "CREATE TABLE b (id INT);"},
//		[]string{"DROP TABLE a;"},
//		false,
//	)
//	// len(groups) == 2, groups[1].Steps[0].Rollback == nil
func CollectSteps(forward, rollback []string, useTransactions bool) []*StepGroup {
	n := max(len(forward), len(rollback))
	if n == 0 {
		return nil
	}

	steps := make([]*Step, n)
	for i := range steps {
		step := &Step{}
		if i < len(forward) {
			step.Forward = forward[i]
		}
		if i < len(rollback) {
			rb := rollback[i]
			step.Rollback = &rb
		}
		steps[i] = step
	}

	if useTransactions {
		return []*StepGroup{{Steps: steps, Transactional: true}}
	}

	groups := make([]*StepGroup, n)
	for i, step := range steps {
		groups[i] = &StepGroup{Steps: []*Step{step}}
	}

	return groups
}

func pairingMismatch(policy PairingPolicy, forward, rollback []string) bool {
	return policy == PairingStrict &&
		len(forward) > 0 &&
		len(rollback) > 0 &&
		len(forward) != len(rollback)
}
