// Package domain models the groundwater well registry.
//
// # Records
//
// A [MonitoringLocation] is a groundwater site (a well or a spring) owned by
// exactly one agency and identified by the pair (site number, agency code).
// Geography, elevation, aquifer, and datum attributes reference closed lookup
// sets (see [Lookups]); the record stores their natural codes, never surrogate
// keys, so a row read back from storage can be re-validated without joins.
//
// # Subnetworks
//
// Sites may participate in the water-level (WL) and water-quality (QW)
// monitoring subnetworks. The subnetwork sub-fields only become mandatory once
// the site is both publicly displayed and enrolled in that subnetwork:
//
//	display_flag ∧ wl_sn_flag                     ⇒ wl_well_type, wl_well_purpose
//	display_flag ∧ wl_sn_flag ∧ wl_baseline_flag  ⇒ wl_well_chars
//
// and symmetrically for QW.
//
// # Validation
//
// Conditional rules make per-column NOT NULL constraints insufficient, so every
// write path (form entry, bulk upload, NWIS fetch) runs the same ordered rule
// list in [Validator.Validate] and reports every violation in one pass.
//
// # Access
//
// Access is agency-scoped. A [Principal] is resolved once per request through
// an [AgencyGroups] mapping into an [AccessContext]; the predicates in access.go
// are pure functions of that context and the target record.
package domain
