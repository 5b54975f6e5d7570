// Package envelopeservice implements the shared gift pool engine inside the
// gifting context.
//
// The module owns the pool lifecycle (seed/claim/return/timeout), festive
// cross-group rounds, settlement archiving, and announcement production
// through an outbox-backed relay. It keeps business rules in the
// application/domain layers and isolates infrastructure concerns behind
// ports and adapters.
package envelopeservice
