package sui

import (
	"fmt"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// UpgradePolicy restricts what an upgrade may change.
type UpgradePolicy uint8

// Upgrade policies accepted by 0x2::package::authorize_upgrade.
const (
	PolicyCompatible UpgradePolicy = 0
	PolicyAdditive   UpgradePolicy = 128
	PolicyDepOnly    UpgradePolicy = 192
)

// ParseUpgradePolicy maps compatible, additive or dep_only to a policy. Empty means compatible.
func ParseUpgradePolicy(s string) (UpgradePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compatible":
		return PolicyCompatible, nil
	case "additive":
		return PolicyAdditive, nil
	case "dep_only", "dep-only":
		return PolicyDepOnly, nil
	default:
		return 0, fmt.Errorf(messages.SuiUnknownPolicyFmt, s)
	}
}

func (p UpgradePolicy) String() string {
	switch p {
	case PolicyCompatible:
		return "compatible"
	case PolicyAdditive:
		return "additive"
	case PolicyDepOnly:
		return "dep_only"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// NewPublishTransaction publishes modules and transfers the resulting UpgradeCap to sender.
func NewPublishTransaction(modules [][]byte, dependencies []string, sender string) (*ProgrammableTransaction, error) {
	tx := NewProgrammableTransaction()
	capability := tx.Add(Publish{Modules: modules, Dependencies: dependencies})
	tx.Add(TransferObjects{Objects: []Argument{capability}, Address: tx.PureAddress(sender)})
	if err := tx.Err(); err != nil {
		return nil, err
	}
	return tx, nil
}

// UpgradeParams describes one package upgrade.
type UpgradeParams struct {
	Modules      [][]byte
	Dependencies []string
	Digest       []byte
	PackageID    string
	UpgradeCapID string
	Policy       UpgradePolicy
}

// NewUpgradeTransaction authorizes, performs and commits an upgrade of PackageID.
func NewUpgradeTransaction(p UpgradeParams) (*ProgrammableTransaction, error) {
	tx := NewProgrammableTransaction()
	capability := tx.Object(p.UpgradeCapID)
	ticket := tx.Call(FrameworkAddress+"::package::authorize_upgrade",
		capability,
		tx.PureU8(uint8(p.Policy)),
		tx.PureBytes(p.Digest),
	)
	receipt := tx.Add(Upgrade{
		Modules:      p.Modules,
		Dependencies: p.Dependencies,
		Package:      p.PackageID,
		Ticket:       ticket,
	})
	tx.Call(FrameworkAddress+"::package::commit_upgrade", capability, receipt)
	if err := tx.Err(); err != nil {
		return nil, err
	}
	return tx, nil
}
