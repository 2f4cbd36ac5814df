// Package store implements the observable ChatState container.
//
// A Store offers three primitives: GetState, Subscribe and SetState. SetState
// merges a core.Patch field by field, swaps the snapshot and synchronously
// notifies listeners in registration order before returning. A panicking
// listener is recovered and reported through Options.ErrorHandler; the other
// listeners are still notified.
//
// Producers (through the bridge package) and direct writers (demos, tests)
// share the same SetState primitive; the label argument is the only thing that
// tells them apart and it is informational only.
package store
