// Package normalisers turns raw connector payloads into text documents.
// Each sub-package handles one family of MIME types; the Registry picks
// the highest-priority normaliser for a payload.
package normalisers
