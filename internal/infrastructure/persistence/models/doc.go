// Package models contains GORM persistence models that map to database
// tables. They are kept separate from domain entities so the domain layer
// stays free of ORM tags and mapping concerns.
//
// Each model carries a FromDomain constructor and a ToDomain method, and
// repositories only ever exchange domain types with their callers.
//
// Structure:
//   - feedback.go: feedback items, comments and votes
//   - tracker_config.go: per-project tracker integration settings
//   - subscription.go: subscriptions used for revenue aggregation
package models
