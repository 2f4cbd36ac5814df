// Package registry maps string keys to lazily created chat stores.
//
// Every key owns exactly one store until it is removed. The empty key is the
// same as DefaultKey. Stores handed out before a Remove or Clear keep working
// but are no longer reachable through the registry.
package registry
