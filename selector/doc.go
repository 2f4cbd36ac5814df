// Package selector derives values from a store and re-delivers them only when
// they change.
//
// A Watcher evaluates its selector once on creation and again after every
// store write, but calls back only when the result is not Shallow-equal to
// the previous one. Selectors returning freshly built slices or structs
// therefore stay quiet as long as their elements are the same values.
package selector
