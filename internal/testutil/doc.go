// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing messages, chat states and producers. They are
// not intended for production usage.
package testutil
