// Package productledger implements the product lifecycle ledger: owner
// records, the sequential id counter, and the append-only journey log.
//
// Layering:
// - domain: product/journey entities, status vocabulary, sentinel errors
// - application: validated mutations and reads using explicit ports
// - ports: stable boundaries for persistence, access checks, notifications
// - adapters: concrete HTTP, memory, postgres, and notification implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Journey entries are immutable once appended; no edit/delete exists.
// - Authorization is consulted through the AccessChecker port only; this
//   module never reaches into the access-registry adapters.
// - Status transitions are intentionally unvalidated: any authorized
//   handler may set any status at any time.
package productledger
