// Package bridge mirrors a producer's chat state into a store.
//
// Each snapshot is written as one merge carrying the session id, messages,
// status, error and the seven action bindings, labelled "syncFromUseChat".
// Consumers then read the store through the selector package instead of
// holding a reference to the producer.
package bridge
