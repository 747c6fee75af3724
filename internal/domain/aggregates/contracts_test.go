package aggregates

import "testing"

func TestProposalContract(t *testing.T) {
	if err := ProposalAggregateContract.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ProposalAggregateContract.RequiresAggregateOwnedTx() {
		t.Fatalf("proposal writes must own their transaction")
	}
}

func TestContractValidate(t *testing.T) {
	cases := []struct {
		name string
		c    Contract
		ok   bool
	}{
		{"unnamed", Contract{WriteTxOwnership: WriteTxOwnedByAggregate, ReadPolicy: ReadPolicyInvariantScoped}, false},
		{"no ownership", Contract{Name: "x", ReadPolicy: ReadPolicyInvariantScoped}, false},
		{"bad policy", Contract{Name: "x", WriteTxOwnership: WriteTxOwnedByAggregate, ReadPolicy: "anything"}, false},
		{"repo queries", Contract{Name: "x", WriteTxOwnership: WriteTxOwnedByAggregate, ReadPolicy: ReadPolicyTableRepoQueries}, true},
	}
	for _, tc := range cases {
		err := tc.c.Validate()
		if tc.ok != (err == nil) {
			t.Fatalf("%s: err=%v", tc.name, err)
		}
		if err != nil && !IsCode(err, CodeValidation) {
			t.Fatalf("%s: code=%s", tc.name, CodeOf(err))
		}
	}
}
