// Package cloud is the per-user remote mirror of the saved collection.
//
// Documents live under books/{userID}/userBooks/{recordID} and are
// schemaless JSON objects. Every backend implements Store with merge-upsert
// writes: a Put only replaces the fields it carries, so two flows writing
// different fields of the same record do not clobber each other.
//
// Backends:
//
//   - S3Store       objects in an S3 (or MinIO) bucket, merge by read-modify-write
//   - PostgresStore one jsonb row per record, merge with the || operator
//   - BoltStore     a local bbolt file, handy for development and demos
//
// All failures are returned as *CloudSyncError, which matches
// common.ErrCloudSync under errors.Is.
package cloud
