// Package aggregates contains the write side of the proposal engine.
//
// Implementations in this package compose table-level repos from internal/data/repos
// and the catalogue modules, and own the transaction boundary of every proposal
// transition: one serialisable transaction, row locks on the proposal and its
// learning unit year, rollback on any failure (panics included).
package aggregates
