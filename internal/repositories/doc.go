// package repositories provides the persistence layer for scanned records.
//
// AlbumRepository is the dedup source of truth: the pipeline consults it
// before any remote call, and only resolved records ever reach it.
package repositories
