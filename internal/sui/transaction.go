package sui

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

type argumentKind uint8

const (
	argGasCoin argumentKind = iota
	argInput
	argResult
	argNestedResult
)

// Argument references a transaction input or the result of an earlier command.
type Argument struct {
	kind   argumentKind
	index  uint16
	nested uint16
}

// GasCoin refers to the gas payment coin.
func GasCoin() Argument { return Argument{kind: argGasCoin} }

// Input refers to the input at index.
func Input(index uint16) Argument { return Argument{kind: argInput, index: index} }

// Result refers to the whole result of the command at index.
func Result(index uint16) Argument { return Argument{kind: argResult, index: index} }

// NestedResult refers to one value of a command returning several.
func NestedResult(index uint16, nested uint16) Argument {
	return Argument{kind: argNestedResult, index: index, nested: nested}
}

func (a Argument) encode(w *bcsWriter) {
	w.uleb128(uint64(a.kind))
	switch a.kind {
	case argInput, argResult:
		w.u16(a.index)
	case argNestedResult:
		w.u16(a.index)
		w.u16(a.nested)
	}
}

// ObjectRef pins an owned object at a version.
type ObjectRef struct {
	ObjectID string
	Version  uint64
	Digest   string
}

func (r ObjectRef) encode(w *bcsWriter) error {
	id, err := AddressBytes(r.ObjectID)
	if err != nil {
		return err
	}
	digest, err := base58.Decode(r.Digest)
	if err != nil {
		return fmt.Errorf(messages.SuiDigestDecodeFmt, r.Digest, err)
	}
	if len(digest) != 32 {
		return fmt.Errorf(messages.SuiDigestLengthFmt, len(digest))
	}
	w.address(id)
	w.u64(r.Version)
	w.bytes(digest)
	return nil
}

// CallArg is a transaction input.
type CallArg interface {
	encode(w *bcsWriter) error
}

// PureArg is a BCS-encoded value.
type PureArg struct {
	Bytes []byte
}

func (a PureArg) encode(w *bcsWriter) error {
	w.uleb128(0)
	w.bytes(a.Bytes)
	return nil
}

// OwnedObjectArg is an immutable or address-owned object input.
type OwnedObjectArg struct {
	Ref ObjectRef
}

func (a OwnedObjectArg) encode(w *bcsWriter) error {
	w.uleb128(1)
	w.uleb128(0)
	return a.Ref.encode(w)
}

// SharedObjectArg is a shared object input.
type SharedObjectArg struct {
	ObjectID             string
	InitialSharedVersion uint64
	Mutable              bool
}

func (a SharedObjectArg) encode(w *bcsWriter) error {
	id, err := AddressBytes(a.ObjectID)
	if err != nil {
		return err
	}
	w.uleb128(1)
	w.uleb128(1)
	w.address(id)
	w.u64(a.InitialSharedVersion)
	w.bool(a.Mutable)
	return nil
}

// UnresolvedObjectArg is an object input whose version and ownership are looked up
// by the client before the transaction is serialized.
type UnresolvedObjectArg struct {
	ObjectID string
	Mutable  bool
}

// ErrUnresolvedInput is returned when serializing a transaction with unresolved inputs.
var ErrUnresolvedInput = errors.New("unresolved object input")

func (a UnresolvedObjectArg) encode(*bcsWriter) error {
	return fmt.Errorf("%w: %s", ErrUnresolvedInput, a.ObjectID)
}

// Command is one step of a programmable transaction.
type Command interface {
	encode(w *bcsWriter) error
}

// MoveCall invokes package::module::function. Generic functions are not supported.
type MoveCall struct {
	Package   string
	Module    string
	Function  string
	Arguments []Argument
}

func (c MoveCall) encode(w *bcsWriter) error {
	pkg, err := AddressBytes(c.Package)
	if err != nil {
		return err
	}
	w.uleb128(0)
	w.address(pkg)
	w.str(c.Module)
	w.str(c.Function)
	w.uleb128(0)
	encodeArguments(w, c.Arguments)
	return nil
}

// TransferObjects sends objects to the address argument.
type TransferObjects struct {
	Objects []Argument
	Address Argument
}

func (c TransferObjects) encode(w *bcsWriter) error {
	w.uleb128(1)
	encodeArguments(w, c.Objects)
	c.Address.encode(w)
	return nil
}

// Publish publishes compiled modules. It returns the package's UpgradeCap.
type Publish struct {
	Modules      [][]byte
	Dependencies []string
}

func (c Publish) encode(w *bcsWriter) error {
	w.uleb128(4)
	encodeModules(w, c.Modules)
	return encodeAddresses(w, c.Dependencies)
}

// Upgrade replaces Package with new modules given an UpgradeTicket. It returns an UpgradeReceipt.
type Upgrade struct {
	Modules      [][]byte
	Dependencies []string
	Package      string
	Ticket       Argument
}

func (c Upgrade) encode(w *bcsWriter) error {
	w.uleb128(6)
	encodeModules(w, c.Modules)
	if err := encodeAddresses(w, c.Dependencies); err != nil {
		return err
	}
	pkg, err := AddressBytes(c.Package)
	if err != nil {
		return err
	}
	w.address(pkg)
	c.Ticket.encode(w)
	return nil
}

func encodeArguments(w *bcsWriter, args []Argument) {
	w.uleb128(uint64(len(args)))
	for _, arg := range args {
		arg.encode(w)
	}
}

func encodeModules(w *bcsWriter, modules [][]byte) {
	w.uleb128(uint64(len(modules)))
	for _, module := range modules {
		w.bytes(module)
	}
}

func encodeAddresses(w *bcsWriter, addrs []string) error {
	w.uleb128(uint64(len(addrs)))
	for _, addr := range addrs {
		raw, err := AddressBytes(addr)
		if err != nil {
			return err
		}
		w.address(raw)
	}
	return nil
}

// ProgrammableTransaction accumulates inputs and commands. Identical pure values and
// repeated object ids share one input.
type ProgrammableTransaction struct {
	Inputs   []CallArg
	Commands []Command

	pureIndex   map[string]uint16
	objectIndex map[string]uint16
	err         error
}

// NewProgrammableTransaction returns an empty transaction.
func NewProgrammableTransaction() *ProgrammableTransaction {
	return &ProgrammableTransaction{
		pureIndex:   make(map[string]uint16),
		objectIndex: make(map[string]uint16),
	}
}

// Err returns the first error recorded while adding inputs or commands.
func (tx *ProgrammableTransaction) Err() error {
	return tx.err
}

func (tx *ProgrammableTransaction) addInput(arg CallArg) uint16 {
	if len(tx.Inputs) >= math.MaxUint16 {
		if tx.err == nil {
			tx.err = fmt.Errorf(messages.SuiInputIndexFmt, len(tx.Inputs))
		}
		return math.MaxUint16
	}
	tx.Inputs = append(tx.Inputs, arg)
	return uint16(len(tx.Inputs) - 1)
}

// Pure adds a BCS-encoded value input.
func (tx *ProgrammableTransaction) Pure(value []byte) Argument {
	key := string(value)
	if idx, ok := tx.pureIndex[key]; ok {
		return Input(idx)
	}
	idx := tx.addInput(PureArg{Bytes: append([]byte(nil), value...)})
	tx.pureIndex[key] = idx
	return Input(idx)
}

// PureAddress adds an address value input.
func (tx *ProgrammableTransaction) PureAddress(addr string) Argument {
	raw, err := AddressBytes(addr)
	if err != nil && tx.err == nil {
		tx.err = err
	}
	return tx.Pure(raw[:])
}

// PureU8 adds a u8 value input.
func (tx *ProgrammableTransaction) PureU8(v uint8) Argument {
	return tx.Pure([]byte{v})
}

// PureBytes adds a vector<u8> value input.
func (tx *ProgrammableTransaction) PureBytes(b []byte) Argument {
	var w bcsWriter
	w.bytes(b)
	return tx.Pure(w.Bytes())
}

// Object adds a mutable object input that the client resolves before serialization.
func (tx *ProgrammableTransaction) Object(id string) Argument {
	normalized, err := NormalizeAddress(id)
	if err != nil {
		if tx.err == nil {
			tx.err = err
		}
		normalized = id
	}
	if idx, ok := tx.objectIndex[normalized]; ok {
		return Input(idx)
	}
	idx := tx.addInput(UnresolvedObjectArg{ObjectID: normalized, Mutable: true})
	tx.objectIndex[normalized] = idx
	return Input(idx)
}

// Add appends cmd and returns a reference to its result.
func (tx *ProgrammableTransaction) Add(cmd Command) Argument {
	if len(tx.Commands) >= math.MaxUint16 && tx.err == nil {
		tx.err = errors.New(messages.SuiTooManyCommands)
	}
	tx.Commands = append(tx.Commands, cmd)
	return Result(uint16(len(tx.Commands) - 1))
}

// Call appends a MoveCall to target, written as package::module::function.
func (tx *ProgrammableTransaction) Call(target string, args ...Argument) Argument {
	parts := strings.Split(target, "::")
	if len(parts) != 3 {
		if tx.err == nil {
			tx.err = fmt.Errorf(messages.SuiInvalidStructTagFmt, target)
		}
		parts = []string{"0x0", "", ""}
	}
	return tx.Add(MoveCall{Package: parts[0], Module: parts[1], Function: parts[2], Arguments: args})
}

// Unresolved returns the indexes of object inputs that still need resolution.
func (tx *ProgrammableTransaction) Unresolved() []int {
	var out []int
	for i, input := range tx.Inputs {
		if _, ok := input.(UnresolvedObjectArg); ok {
			out = append(out, i)
		}
	}
	return out
}

func (tx *ProgrammableTransaction) encode(w *bcsWriter) error {
	if tx.err != nil {
		return tx.err
	}
	w.uleb128(uint64(len(tx.Inputs)))
	for _, input := range tx.Inputs {
		if err := input.encode(w); err != nil {
			return err
		}
	}
	w.uleb128(uint64(len(tx.Commands)))
	for _, cmd := range tx.Commands {
		if err := cmd.encode(w); err != nil {
			return err
		}
	}
	return nil
}

// TransactionData is a programmable transaction with its sender and gas configuration.
type TransactionData struct {
	Sender     string
	GasPayment []ObjectRef
	GasOwner   string
	GasPrice   uint64
	GasBudget  uint64
	Tx         *ProgrammableTransaction
}

// Marshal returns the BCS bytes of TransactionData::V1.
func (d TransactionData) Marshal() ([]byte, error) {
	sender, err := AddressBytes(d.Sender)
	if err != nil {
		return nil, err
	}
	owner := sender
	if d.GasOwner != "" {
		if owner, err = AddressBytes(d.GasOwner); err != nil {
			return nil, err
		}
	}

	var w bcsWriter
	w.uleb128(0) // V1
	w.uleb128(0) // ProgrammableTransaction
	if err := d.Tx.encode(&w); err != nil {
		return nil, err
	}
	w.address(sender)
	w.uleb128(uint64(len(d.GasPayment)))
	for _, ref := range d.GasPayment {
		if err := ref.encode(&w); err != nil {
			return nil, err
		}
	}
	w.address(owner)
	w.u64(d.GasPrice)
	w.u64(d.GasBudget)
	w.uleb128(0) // TransactionExpiration::None
	return w.Bytes(), nil
}
