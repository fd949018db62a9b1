// Package types provides type-safe constants for the profup update protocol.
//
// This package centralizes the enumerated values that cross package
// boundaries (service names on the wire, download outcomes reported to the
// CLI) so they are checked at compile time instead of passed as bare strings.
package types

import (
	"fmt"
	"strings"
)

// ServiceName identifies an endpoint of the update service.
type ServiceName string

const (
	// ServiceCurrentProfile answers whether a newer profile bundle exists.
	ServiceCurrentProfile ServiceName = "currentProfile"
	// ServiceUpdateMessage returns the human-readable update notice.
	ServiceUpdateMessage ServiceName = "updateMessage"
	// ServiceUpdate streams the update archive.
	ServiceUpdate ServiceName = "update"
)

// Validate checks if the ServiceName is a valid value.
func (s ServiceName) Validate() error {
	switch s {
	case ServiceCurrentProfile, ServiceUpdateMessage, ServiceUpdate:
		return nil
	case "":
		return fmt.Errorf("service name is required")
	default:
		return fmt.Errorf("invalid service name '%s' (must be currentProfile, updateMessage, or update)", s)
	}
}

// String returns the string representation of the ServiceName.
func (s ServiceName) String() string {
	return string(s)
}

// ParseServiceName parses a string into a ServiceName.
// Service names are case-sensitive on the wire, so no folding is applied.
func ParseServiceName(s string) (ServiceName, error) {
	sn := ServiceName(strings.TrimSpace(s))
	if err := sn.Validate(); err != nil {
		return "", err
	}
	return sn, nil
}

// OutcomeStatus is the terminal state of a download attempt.
type OutcomeStatus string

const (
	// OutcomeCompleted means the whole stream was written to disk.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomeCancelled means the caller cancelled between chunks.
	// The destination may hold a partial file.
	OutcomeCancelled OutcomeStatus = "cancelled"
	// OutcomeFailed means a transport or local I/O error aborted the download.
	OutcomeFailed OutcomeStatus = "failed"
)

// String returns the string representation of the OutcomeStatus.
func (o OutcomeStatus) String() string {
	return string(o)
}

// IsCompleted returns true if the download finished.
func (o OutcomeStatus) IsCompleted() bool {
	return o == OutcomeCompleted
}

// IsCancelled returns true if the download was cancelled.
func (o OutcomeStatus) IsCancelled() bool {
	return o == OutcomeCancelled
}
