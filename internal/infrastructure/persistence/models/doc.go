// Package models contains GORM-specific persistence models that map to
// database tables. These models are separate from domain entities to keep the
// domain layer free from ORM concerns: models carry all GORM annotations and
// table mappings, and mappers convert between the two representations.
package models
