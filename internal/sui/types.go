package sui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Owner is the ownership of an object after a transaction.
type Owner interface {
	isOwner()
}

// AddressOwner is an object owned by an account address.
type AddressOwner struct {
	Address string
}

// ObjectOwner is an object owned by another object.
type ObjectOwner struct {
	ObjectID string
}

// SharedOwner is a shared object.
type SharedOwner struct {
	InitialSharedVersion uint64
}

// ImmutableOwner is a frozen object.
type ImmutableOwner struct{}

// UnknownOwner is an ownership kind this client does not model.
type UnknownOwner struct {
	Raw json.RawMessage
}

func (AddressOwner) isOwner()   {}
func (ObjectOwner) isOwner()    {}
func (SharedOwner) isOwner()    {}
func (ImmutableOwner) isOwner() {}
func (UnknownOwner) isOwner()   {}

// DecodeOwner decodes the owner JSON of an object change. Absent owners decode to nil;
// shapes it cannot read decode to UnknownOwner.
func DecodeOwner(raw json.RawMessage) (Owner, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		if s == "Immutable" {
			return ImmutableOwner{}, nil
		}
		return UnknownOwner{Raw: append(json.RawMessage(nil), trimmed...)}, nil
	}

	var obj struct {
		AddressOwner *string `json:"AddressOwner"`
		ObjectOwner  *string `json:"ObjectOwner"`
		Shared       *struct {
			InitialSharedVersion json.Number `json:"initial_shared_version"`
		} `json:"Shared"`
	}
	unknown := UnknownOwner{Raw: append(json.RawMessage(nil), trimmed...)}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return unknown, nil
	}
	switch {
	case obj.AddressOwner != nil:
		return AddressOwner{Address: *obj.AddressOwner}, nil
	case obj.ObjectOwner != nil:
		return ObjectOwner{ObjectID: *obj.ObjectOwner}, nil
	case obj.Shared != nil:
		version, err := strconv.ParseUint(obj.Shared.InitialSharedVersion.String(), 10, 64)
		if err != nil {
			return unknown, nil
		}
		return SharedOwner{InitialSharedVersion: version}, nil
	default:
		return unknown, nil
	}
}

// ObjectChange is one object-change record of an executed transaction.
type ObjectChange interface {
	isObjectChange()
}

// PublishedChange records a newly published package.
type PublishedChange struct {
	PackageID string
	Version   string
	Digest    string
	Modules   []string
}

// CreatedChange records a newly created object.
type CreatedChange struct {
	Sender     string
	Owner      Owner
	ObjectType string
	ObjectID   string
	Version    string
	Digest     string
}

// MutatedChange records an object whose contents changed.
type MutatedChange struct {
	Sender          string
	Owner           Owner
	ObjectType      string
	ObjectID        string
	Version         string
	PreviousVersion string
	Digest          string
}

// DeletedChange records a deleted object.
type DeletedChange struct {
	Sender     string
	ObjectType string
	ObjectID   string
	Version    string
}

// WrappedChange records an object wrapped into another.
type WrappedChange struct {
	Sender     string
	ObjectType string
	ObjectID   string
	Version    string
}

// TransferredChange records an object moved to a new owner.
type TransferredChange struct {
	Sender     string
	Recipient  Owner
	ObjectType string
	ObjectID   string
	Version    string
	Digest     string
}

// UnknownChange is a change type this client does not model.
type UnknownChange struct {
	Type string
	Raw  json.RawMessage
}

func (PublishedChange) isObjectChange()   {}
func (CreatedChange) isObjectChange()     {}
func (MutatedChange) isObjectChange()     {}
func (DeletedChange) isObjectChange()     {}
func (WrappedChange) isObjectChange()     {}
func (TransferredChange) isObjectChange() {}
func (UnknownChange) isObjectChange()     {}

type rawObjectChange struct {
	Type            string          `json:"type"`
	Sender          string          `json:"sender"`
	Owner           json.RawMessage `json:"owner"`
	Recipient       json.RawMessage `json:"recipient"`
	ObjectType      string          `json:"objectType"`
	ObjectID        string          `json:"objectId"`
	PackageID       string          `json:"packageId"`
	Version         json.Number     `json:"version"`
	PreviousVersion json.Number     `json:"previousVersion"`
	Digest          string          `json:"digest"`
	Modules         []string        `json:"modules"`
}

// DecodeObjectChange decodes one objectChanges entry.
func DecodeObjectChange(data []byte) (ObjectChange, error) {
	var raw rawObjectChange
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case "published":
		return PublishedChange{PackageID: raw.PackageID, Version: raw.Version.String(), Digest: raw.Digest, Modules: raw.Modules}, nil
	case "created":
		owner, err := DecodeOwner(raw.Owner)
		if err != nil {
			return nil, err
		}
		return CreatedChange{Sender: raw.Sender, Owner: owner, ObjectType: raw.ObjectType, ObjectID: raw.ObjectID, Version: raw.Version.String(), Digest: raw.Digest}, nil
	case "mutated":
		owner, err := DecodeOwner(raw.Owner)
		if err != nil {
			return nil, err
		}
		return MutatedChange{Sender: raw.Sender, Owner: owner, ObjectType: raw.ObjectType, ObjectID: raw.ObjectID, Version: raw.Version.String(), PreviousVersion: raw.PreviousVersion.String(), Digest: raw.Digest}, nil
	case "deleted":
		return DeletedChange{Sender: raw.Sender, ObjectType: raw.ObjectType, ObjectID: raw.ObjectID, Version: raw.Version.String()}, nil
	case "wrapped":
		return WrappedChange{Sender: raw.Sender, ObjectType: raw.ObjectType, ObjectID: raw.ObjectID, Version: raw.Version.String()}, nil
	case "transferred":
		recipient, err := DecodeOwner(raw.Recipient)
		if err != nil {
			return nil, err
		}
		return TransferredChange{Sender: raw.Sender, Recipient: recipient, ObjectType: raw.ObjectType, ObjectID: raw.ObjectID, Version: raw.Version.String(), Digest: raw.Digest}, nil
	default:
		return UnknownChange{Type: raw.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}
}

// ExecutionStatus is the effects status of an executed transaction.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Succeeded reports whether the transaction executed successfully.
func (s ExecutionStatus) Succeeded() bool {
	return s.Status == "success"
}

// TransactionEffects holds the parts of the effects this client reads.
type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

// TransactionResponse is the result of sui_executeTransactionBlock.
type TransactionResponse struct {
	Digest  string
	Effects *TransactionEffects
	// ObjectChanges is nil when the node returned no objectChanges field.
	ObjectChanges []ObjectChange
	Errors        []string
}

// UnmarshalJSON decodes the response, keeping ObjectChanges nil when the field is absent.
func (r *TransactionResponse) UnmarshalJSON(data []byte) error {
	var aux struct {
		Digest        string              `json:"digest"`
		Effects       *TransactionEffects `json:"effects"`
		ObjectChanges *[]json.RawMessage  `json:"objectChanges"`
		Errors        []string            `json:"errors"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Digest = aux.Digest
	r.Effects = aux.Effects
	r.Errors = aux.Errors
	r.ObjectChanges = nil
	if aux.ObjectChanges != nil {
		changes := make([]ObjectChange, 0, len(*aux.ObjectChanges))
		for i, raw := range *aux.ObjectChanges {
			change, err := DecodeObjectChange(raw)
			if err != nil {
				return fmt.Errorf("objectChanges[%d]: %w", i, err)
			}
			changes = append(changes, change)
		}
		r.ObjectChanges = changes
	}
	return nil
}

// Status returns the execution status, or a zero status when effects are missing.
func (r *TransactionResponse) Status() ExecutionStatus {
	if r == nil || r.Effects == nil {
		return ExecutionStatus{}
	}
	return r.Effects.Status
}
