// Package entities defines the GORM models of the artwork catalog.
//
// # Catalog Entities
//
//   - Artwork: a catalogued work with its physical and bibliographic metadata
//   - Exhibition: a show at a museum, owning its installation photos
//   - InstallationPhoto: a photograph taken inside an exhibition
//   - ArtworkAppearance: one detected occurrence of an artwork within a photo
//
// Every entity carries a UUID primary key assigned on insert and GORM managed
// created_at/updated_at timestamps. Parent to child relationships are declared
// on the parent with ON DELETE CASCADE, so deleting an exhibition removes its
// photos and, transitively, their appearances. The relationship slices are only
// populated by explicit fetch operations in the repository package.
//
// Each entity has a companion patch type whose pointer fields are the complete
// list of columns an update may touch.
package entities
