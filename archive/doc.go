// Package archive implements the PK2 archive format: a single host file
// embedding a hierarchical virtual filesystem of directories and files,
// optionally encrypted with Blowfish.
//
// The on-disk body is a graph of 2560-byte blocks, each holding 20 fixed
// size entries, chained together by absolute file offsets. A block manager
// parses that graph once on open into an in-memory index keyed by chain
// offset, after which path resolution and mutation never require rewriting
// the whole archive.
package archive
