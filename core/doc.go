// Package core provides the domain types shared by every chatstore package:
//
//   - ChatState (id, messages, status, error and the producer's action bindings)
//   - Message and its closed set of Parts (text, tool-call, tool-result, data)
//   - Patch, the fixed-shape partial state merged by stores field by field
//
// Messages and parts are value snapshots. Producers never mutate a message that
// was already published; they build a new one and publish a new slice.
package core
