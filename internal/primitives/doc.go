// Package primitives provides the foundational data structures for the exception
// engine: exception kinds and values, the kind table, lifecycle events and traces.
//
// Core invariants:
// - Kind zero (None) never names a real exception
// - Exception and Event are value types; consumers MUST NOT mutate a payload after raising it
// - Kind tables are validated before use (unique, positive ids and unique names)
package primitives
