package aggregates

import "strings"

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

// WriteTxOwnedByAggregate: callers never pass a transaction in; every write
// method commits or rolls back on its own.
const WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"

// ReadPolicy bounds which reads an aggregate performs itself.
type ReadPolicy string

const (
	// ReadPolicyInvariantScoped: only the reads a write needs to check its invariants.
	ReadPolicyInvariantScoped ReadPolicy = "invariant_scoped_reads"
	// ReadPolicyTableRepoQueries: listing and search stay on the table repos.
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

// Contract is the stable self-description of an aggregate.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// Validate reports a contract that is unnamed or leaves its policies unset.
func (c Contract) Validate() error {
	const op = "Contract.Validate"
	switch {
	case strings.TrimSpace(c.Name) == "":
		return NewError(CodeValidation, op, "contract name required", nil)
	case c.WriteTxOwnership == "":
		return Errorf(CodeValidation, op, "%s: write transaction ownership unset", c.Name)
	case c.ReadPolicy != ReadPolicyInvariantScoped && c.ReadPolicy != ReadPolicyTableRepoQueries:
		return Errorf(CodeValidation, op, "%s: unknown read policy %q", c.Name, c.ReadPolicy)
	default:
		return nil
	}
}
