// Package buffer provides Spined, an append-only buffer that grows by
// adding chunks to a spine instead of copying, and can be split for
// parallel traversal.
package buffer
