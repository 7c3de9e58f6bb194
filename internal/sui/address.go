// Package sui talks to a Sui fullnode: it builds, signs and submits programmable
// transactions and decodes their object changes.
package sui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// AddressLength is the byte length of addresses and object ids.
const AddressLength = 32

// FrameworkAddress is the normalized address of the Sui framework package (0x2).
var FrameworkAddress = MustNormalizeAddress("0x2")

// NormalizeAddress returns addr as 0x followed by 64 lowercase hex digits.
func NormalizeAddress(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" || len(trimmed) > AddressLength*2 {
		return "", fmt.Errorf(messages.SuiInvalidAddressFmt, addr)
	}
	trimmed = strings.ToLower(trimmed)
	if _, err := hex.DecodeString(padHex(trimmed)); err != nil {
		return "", fmt.Errorf(messages.SuiInvalidAddressFmt, addr)
	}
	return "0x" + padHex(trimmed), nil
}

// MustNormalizeAddress is NormalizeAddress for constants.
func MustNormalizeAddress(addr string) string {
	out, err := NormalizeAddress(addr)
	if err != nil {
		panic(err)
	}
	return out
}

// AddressBytes decodes addr into its 32-byte form.
func AddressBytes(addr string) ([AddressLength]byte, error) {
	var out [AddressLength]byte
	normalized, err := NormalizeAddress(addr)
	if err != nil {
		return out, err
	}
	raw, err := hex.DecodeString(normalized[2:])
	if err != nil {
		return out, fmt.Errorf(messages.SuiInvalidAddressFmt, addr)
	}
	copy(out[:], raw)
	return out, nil
}

// SameAddress reports whether a and b denote the same address.
func SameAddress(a string, b string) bool {
	left, err := NormalizeAddress(a)
	if err != nil {
		return false
	}
	right, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return left == right
}

func padHex(s string) string {
	if len(s) >= AddressLength*2 {
		return s
	}
	return strings.Repeat("0", AddressLength*2-len(s)) + s
}

// StructTag is a parsed Move type `address::module::name<params>`.
type StructTag struct {
	Address    string
	Module     string
	Name       string
	TypeParams string
}

// ParseStructTag parses a Move struct type. The address is normalized and any generic
// parameters are kept verbatim.
func ParseStructTag(s string) (StructTag, error) {
	raw := strings.TrimSpace(s)
	params := ""
	if i := strings.IndexByte(raw, '<'); i >= 0 {
		if !strings.HasSuffix(raw, ">") {
			return StructTag{}, fmt.Errorf(messages.SuiInvalidStructTagFmt, s)
		}
		params = raw[i+1 : len(raw)-1]
		raw = raw[:i]
	}
	parts := strings.Split(raw, "::")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return StructTag{}, fmt.Errorf(messages.SuiInvalidStructTagFmt, s)
	}
	addr, err := NormalizeAddress(parts[0])
	if err != nil {
		return StructTag{}, fmt.Errorf(messages.SuiInvalidStructTagFmt, s)
	}
	return StructTag{Address: addr, Module: parts[1], Name: parts[2], TypeParams: params}, nil
}

// Is reports whether the tag names address::module::name, ignoring type parameters.
func (t StructTag) Is(address string, module string, name string) bool {
	return SameAddress(t.Address, address) && t.Module == module && t.Name == name
}

// String renders the tag with its normalized address.
func (t StructTag) String() string {
	out := t.Address + "::" + t.Module + "::" + t.Name
	if t.TypeParams != "" {
		out += "<" + t.TypeParams + ">"
	}
	return out
}
