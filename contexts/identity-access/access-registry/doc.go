// Package accessregistry implements the handler authorization set for
// the agritrace ledger.
//
// Layering:
// - domain: sentinel errors for authorization failures
// - application: owner-gated grant/revoke plus lookups
// - ports: stable boundaries for persistence and notifications
// - adapters: concrete HTTP, memory, postgres, and notification implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - The owner identity is fixed at construction and always authorized.
// - Other modules consult this one only through the AccessChecker port
//   wired at bootstrap; never import its adapters directly.
package accessregistry
