package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/identity"
)

// identityResult shows registration info. The full hashes are never printed.
type identityResult struct {
	Path       string `json:"path" yaml:"path"`
	Registered bool   `json:"registered" yaml:"registered"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	HalfHash   string `json:"hhash,omitempty" yaml:"hhash,omitempty"`
}

func (r identityResult) String() string {
	if !r.Registered {
		return fmt.Sprintf("Not registered (%s)", r.Path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Registered (%s)\n", r.Path)
	if r.Email != "" {
		fmt.Fprintf(&b, "  email: %s\n", r.Email)
	}
	fmt.Fprintf(&b, "  hhash: %s", r.HalfHash)
	return b.String()
}

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect or clear the registration sent to the update service",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show registration info",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			res, err := showIdentity(e.identities)
			if err != nil {
				return err
			}
			return e.out.Write(res)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear email and user hashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if err := identity.ClearRegistration(e.identities); err != nil {
				return err
			}
			e.say(cmd.OutOrStdout(), "Cleared registration info in %s", e.identities.Path())
			return nil
		},
	})

	return cmd
}

func showIdentity(s *identity.FileStore) (identityResult, error) {
	res := identityResult{Path: s.Path()}

	email, _, err := s.Get(identity.KeyEmail)
	if err != nil {
		return res, fmt.Errorf("failed to read identity: %w", err)
	}
	_, registered, err := s.Get(identity.KeyUserHash)
	if err != nil {
		return res, fmt.Errorf("failed to read identity: %w", err)
	}
	hhash, err := identity.HalfHash(s)
	if err != nil {
		return res, err
	}

	res.Registered = registered
	res.Email = email
	res.HalfHash = hhash
	return res, nil
}
