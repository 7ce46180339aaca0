// Package importers provides the bulk CSV import pipeline shared by every
// registry domain.
//
// # Architecture
//
// A single import run flows through:
//
//	CSV content → RowReader → Mapper → Scorer → Detector → batch insert → Report
//
// The pipeline is generic: a domain is described by a Config value (field
// aliases, transforms, quality rules, natural key, target table) rather
// than by its own code path. Configurations for societies, public trustees
// and government cases live in package registry.
//
// # Adding a Domain
//
//  1. Declare the target fields with their header aliases and transforms:
//
//     fields := []importers.FieldSpec{
//     {Target: "licence_no", Aliases: []string{"licence no", "licence number"}},
//     {Target: "issued_on", Aliases: []string{"date issued"}, Transform: importers.Date},
//     }
//
//  2. Declare the quality rules and the natural key:
//
//     rules := []importers.QualityRule{
//     {Field: "licence_no", Weight: 40, Level: importers.HardRequired},
//     }
//     key := importers.FieldsKey("licence_no")
//
//  3. Build the Config and hand it to NewImporter with a Store.
//
// # Outcomes
//
// Every parsed row ends in exactly one of Imported, Skipped, Duplicate or
// Failed, so that the report always satisfies
//
//	total = successful + failed + duplicate + skipped
//
// A malformed row never aborts the run; only precondition failures (empty
// file, unreadable header, no recognisable columns, missing hard-required
// column, another run in progress) stop an import before any row is read.
package importers
