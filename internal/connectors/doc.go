// Package connectors provides the Connector implementations for each
// supported source and the Registry that builds them for stored
// integrations.
//
// Each provider sub-package exposes a Provider (consent, code exchange,
// connector construction) and a Connector (list items, fetch content).
package connectors
