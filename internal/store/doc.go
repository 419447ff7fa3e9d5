// Package store defines the persistence interfaces consumed by the caption
// pipeline and the API layer, together with the sentinel errors all
// implementations map their backend failures onto.
package store
