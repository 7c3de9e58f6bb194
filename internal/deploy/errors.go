// Package deploy publishes and upgrades Move packages and classifies the resulting
// object changes.
package deploy

import (
	"errors"
	"fmt"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

var (
	// ErrPublishFailed is returned when a publish transaction yields no package id.
	ErrPublishFailed = errors.New("publish failed")
	// ErrUpgradeFailed is returned when an upgrade transaction yields no package id.
	ErrUpgradeFailed = errors.New("upgrade failed")
	// ErrMissingEffects is returned when a response carries no object changes at all.
	ErrMissingEffects = errors.New("missing transaction effects")
)

// TransactionFailedError describes a publish or upgrade whose transaction did not
// produce a package.
type TransactionFailedError struct {
	Op     string
	Dir    string
	Digest string
	Reason string
}

func (e *TransactionFailedError) Error() string {
	msg := fmt.Sprintf(messages.DeployTxFailedFmt, e.Op, e.Dir)
	if e.Digest != "" {
		msg += fmt.Sprintf(messages.DeployTxFailedDigestFmt, e.Digest)
	}
	if e.Reason != "" {
		msg += fmt.Sprintf(messages.DeployTxFailedReasonFmt, e.Reason)
	}
	return msg
}

// Unwrap maps the operation to ErrPublishFailed or ErrUpgradeFailed.
func (e *TransactionFailedError) Unwrap() error {
	if e.Op == opUpgrade {
		return ErrUpgradeFailed
	}
	return ErrPublishFailed
}

const (
	opPublish = "publish"
	opUpgrade = "upgrade"
)
