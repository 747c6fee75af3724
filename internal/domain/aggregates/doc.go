// Package aggregates holds the write contracts of the proposal engine and the
// error vocabulary shared by every layer above the store.
//
// A ProposalAggregate method is one atomic unit: the snapshot, the edits to the
// learning-unit graph and any forward propagation either all commit or none do.
package aggregates
