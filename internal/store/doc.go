// Package store defines the persistence interfaces consumed by the service
// layer, along with transaction helpers and the sentinel errors store
// implementations map database failures onto.
package store
