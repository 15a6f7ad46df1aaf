// Package catalog owns the relational media catalog: the schema, the typed
// entities stored in it, and the repository operations the reconciliation
// engine and CLI drive.
//
// Catalog entries are keyed physically by (relative path, file name); every
// other entity hangs off that identity. Shared dictionaries (genres,
// actors) and groupings are created lazily and garbage-collected exactly
// when the entry being deleted was their last referencer.
package catalog
