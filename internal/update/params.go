package update

import (
	"strconv"

	"github.com/adamancini/profup/internal/identity"
)

// Query parameter names sent with every service call.
const (
	ParamVersion  = "version"
	ParamType     = "type"
	ParamHalfHash = "hhash"
)

// ProtocolType is the constant protocol tag the service expects in "type".
const ProtocolType = "3"

// Params maps query parameter names to values.
type Params map[string]string

// ParamBuilder assembles the standard parameters from local state.
type ParamBuilder struct {
	profile    ProfileSource
	identities identity.Store
}

// NewParamBuilder creates a builder reading the profile version from profile
// and the half-hash from ids.
func NewParamBuilder(profile ProfileSource, ids identity.Store) *ParamBuilder {
	return &ParamBuilder{profile: profile, identities: ids}
}

// Build returns a fresh parameter set. It never fails: an unreadable identity
// store yields an empty hhash and the service treats the caller as unknown.
func (b *ParamBuilder) Build() Params {
	hhash, err := identity.HalfHash(b.identities)
	if err != nil {
		hhash = ""
	}
	return Params{
		ParamVersion:  strconv.Itoa(b.profile.ProfileVersion()),
		ParamType:     ProtocolType,
		ParamHalfHash: hhash,
	}
}
