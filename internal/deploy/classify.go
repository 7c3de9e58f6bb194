package deploy

import (
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

const (
	packageModule     = "package"
	upgradeCapStruct  = "UpgradeCap"
	publisherStruct   = "Publisher"
	sharedOwnerLabel  = "Shared"
	immutableLabel    = "Immutable"
	senderOwnerPrefix = "(you) "
)

// CreatedObject is a created object other than the package capabilities.
type CreatedObject struct {
	Type     string `json:"type"`
	ObjectID string `json:"objectId"`
	Owner    string `json:"owner"`
}

// PublishResult is the classified outcome of a publish transaction.
// PackageID is empty when the transaction failed.
type PublishResult struct {
	PackageID    string          `json:"packageId"`
	UpgradeCapID string          `json:"upgradeCapId"`
	PublisherIDs []string        `json:"publisherIds"`
	Created      []CreatedObject `json:"created"`
	Digest       string          `json:"digest,omitempty"`
}

// Succeeded reports whether a package was published.
func (r PublishResult) Succeeded() bool {
	return r.PackageID != ""
}

// UpgradeResult is the classified outcome of an upgrade transaction.
// PackageID is empty when the transaction failed.
type UpgradeResult struct {
	PackageID    string `json:"packageId"`
	UpgradeCapID string `json:"upgradeCapId"`
	Digest       string `json:"digest,omitempty"`
}

// Succeeded reports whether the upgrade produced a new package version.
func (r UpgradeResult) Succeeded() bool {
	return r.PackageID != ""
}

// ClassifyPublish sorts the object changes of a publish transaction in one pass.
// A nil slice means the response carried no changes and yields ErrMissingEffects.
func ClassifyPublish(changes []sui.ObjectChange) (PublishResult, error) {
	if changes == nil {
		return PublishResult{}, ErrMissingEffects
	}
	result := PublishResult{PublisherIDs: []string{}, Created: []CreatedObject{}}
	for _, change := range changes {
		switch c := change.(type) {
		case sui.PublishedChange:
			result.PackageID = c.PackageID
		case sui.CreatedChange:
			switch {
			case isFrameworkStruct(c.ObjectType, upgradeCapStruct):
				result.UpgradeCapID = c.ObjectID
			case isFrameworkStruct(c.ObjectType, publisherStruct):
				result.PublisherIDs = append(result.PublisherIDs, c.ObjectID)
			default:
				result.Created = append(result.Created, CreatedObject{
					Type:     c.ObjectType,
					ObjectID: c.ObjectID,
					Owner:    ResolveOwner(c.Owner, c.Sender),
				})
			}
		case sui.MutatedChange, sui.DeletedChange, sui.WrappedChange, sui.TransferredChange, sui.UnknownChange:
			// not part of a publish result
		}
	}
	return result, nil
}

// ClassifyUpgrade extracts the new package id and the upgrade capability. The capability
// is mutated, not created, by an upgrade.
func ClassifyUpgrade(changes []sui.ObjectChange) (UpgradeResult, error) {
	if changes == nil {
		return UpgradeResult{}, ErrMissingEffects
	}
	var result UpgradeResult
	for _, change := range changes {
		switch c := change.(type) {
		case sui.PublishedChange:
			result.PackageID = c.PackageID
		case sui.CreatedChange:
			if isFrameworkStruct(c.ObjectType, upgradeCapStruct) {
				result.UpgradeCapID = c.ObjectID
			}
		case sui.MutatedChange:
			if isFrameworkStruct(c.ObjectType, upgradeCapStruct) {
				result.UpgradeCapID = c.ObjectID
			}
		case sui.DeletedChange, sui.WrappedChange, sui.TransferredChange, sui.UnknownChange:
			// not part of an upgrade result
		}
	}
	return result, nil
}

// countPublished returns how many published records changes contains.
func countPublished(changes []sui.ObjectChange) int {
	n := 0
	for _, change := range changes {
		if _, ok := change.(sui.PublishedChange); ok {
			n++
		}
	}
	return n
}

func isFrameworkStruct(objectType string, name string) bool {
	tag, err := sui.ParseStructTag(objectType)
	if err != nil {
		return false
	}
	return tag.Is(sui.FrameworkAddress, packageModule, name)
}

// ResolveOwner renders an owner for reports: the address, prefixed with "(you) " when it
// is the sender, "Shared", "Immutable", or "" for anything else.
func ResolveOwner(owner sui.Owner, sender string) string {
	switch o := owner.(type) {
	case sui.AddressOwner:
		if sender != "" && o.Address == sender {
			return senderOwnerPrefix + sender
		}
		return o.Address
	case sui.SharedOwner:
		return sharedOwnerLabel
	case sui.ImmutableOwner:
		return immutableLabel
	default:
		return ""
	}
}
