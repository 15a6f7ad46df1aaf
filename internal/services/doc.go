// Package services defines the shared error taxonomy for catalog
// operations. Sentinel markers classify failures (validation, external
// tool, configuration, not-found, transient) so callers can branch on
// errors.Is without parsing messages, and Wrap builds consistent
// component/operation error strings around those markers.
package services
