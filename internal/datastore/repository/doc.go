// Package repository provides the catalog's record access layer.
//
// Store is a generic create/read/update/delete implementation over the four
// catalog entities. The domain repositories (ArtworkRepository,
// ExhibitionRepository, InstallationPhotoRepository and
// ArtworkAppearanceRepository) embed a Store and add entity specific queries.
//
// # Sessions
//
// Repositories are bound to the *gorm.DB they were created with. Inside a
// datastore session scope that is the scope's transaction; every write runs
// in its own savepoint so a failed write is rolled back before its error is
// returned, leaving earlier writes of the same scope intact.
//
// # Absence
//
// Lookups by identifier report a missing row with a false second result and a
// nil error. Only failures of the database itself are returned as errors.
//
// # Related Collections
//
// Relationship slices on the entities are never loaded implicitly. They are
// filled only by the named fetch operations (GetWithAppearances,
// GetWithPhotos).
//
// # Error Handling
//
// Writes that violate a schema invariant (uniqueness, required field, foreign
// key, value range) return errors in errors.CategoryPersistence. Failures to
// reach the database return errors.CategoryConnectivity.
package repository
