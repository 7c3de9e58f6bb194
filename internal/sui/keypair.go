package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/crypto/blake2b"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultKeystorePath is where the sui CLI keeps its keys.
const DefaultKeystorePath = "~/.sui/sui_config/sui.keystore"

const ed25519Flag byte = 0x00

// intentTransaction prefixes transaction bytes before hashing for a signature.
var intentTransaction = []byte{0, 0, 0}

// Signer signs transaction bytes on behalf of an address.
type Signer interface {
	Address() string
	// SignTransaction returns the base64 serialized signature over txBytes.
	SignTransaction(txBytes []byte) (string, error)
}

// Keypair is an ed25519 Sui account.
type Keypair struct {
	private ed25519.PrivateKey
	address string
}

// NewKeypairFromSeed derives a keypair from a 32-byte ed25519 seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New(messages.SuiSecretKeyInvalid)
	}
	private := ed25519.NewKeyFromSeed(seed)
	public := private.Public().(ed25519.PublicKey)
	return &Keypair{private: private, address: deriveAddress(public)}, nil
}

// ParseSecretKey accepts a keystore entry (base64 flag||seed), a base64 seed or a hex seed.
func ParseSecretKey(s string) (*Keypair, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, errors.New(messages.SuiSecretKeyEmpty)
	}
	if raw, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		switch len(raw) {
		case ed25519.SeedSize + 1:
			if raw[0] != ed25519Flag {
				return nil, fmt.Errorf(messages.SuiSecretKeySchemeFmt, raw[0])
			}
			return NewKeypairFromSeed(raw[1:])
		case ed25519.SeedSize:
			return NewKeypairFromSeed(raw)
		}
	}
	hexed := strings.TrimPrefix(trimmed, "0x")
	if raw, err := hex.DecodeString(hexed); err == nil && len(raw) == ed25519.SeedSize {
		return NewKeypairFromSeed(raw)
	}
	return nil, errors.New(messages.SuiSecretKeyInvalid)
}

// LoadKeystore reads a sui.keystore file and returns the key for address, or the first
// ed25519 key when address is empty. Non-ed25519 entries are skipped.
func LoadKeystore(path string, address string) (*Keypair, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultKeystorePath
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf(messages.SuiHomeExpandFmt, path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf(messages.SuiKeystoreReadFmt, expanded, err)
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf(messages.SuiKeystoreDecodeFmt, expanded, err)
	}

	var first *Keypair
	for _, entry := range entries {
		kp, err := ParseSecretKey(entry)
		if err != nil {
			continue
		}
		if address == "" {
			return kp, nil
		}
		if SameAddress(kp.Address(), address) {
			return kp, nil
		}
		if first == nil {
			first = kp
		}
	}
	if first == nil {
		return nil, fmt.Errorf(messages.SuiKeystoreEmptyFmt, expanded)
	}
	return nil, fmt.Errorf(messages.SuiKeystoreNoAddressFmt, expanded, address)
}

func deriveAddress(public ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+len(public))
	buf = append(buf, ed25519Flag)
	buf = append(buf, public...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// Address returns the normalized account address.
func (k *Keypair) Address() string {
	return k.address
}

// PublicKey returns the ed25519 public key.
func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

// SignTransaction signs blake2b-256(intent || txBytes) and returns flag || sig || pubkey in base64.
func (k *Keypair) SignTransaction(txBytes []byte) (string, error) {
	message := make([]byte, 0, len(intentTransaction)+len(txBytes))
	message = append(message, intentTransaction...)
	message = append(message, txBytes...)
	digest := blake2b.Sum256(message)
	sig := ed25519.Sign(k.private, digest[:])

	public := k.PublicKey()
	serialized := make([]byte, 0, 1+len(sig)+len(public))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, public...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}

// VerifyTransaction checks a signature produced by SignTransaction.
func VerifyTransaction(txBytes []byte, signature string) bool {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != ed25519Flag {
		return false
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	public := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])
	message := append(append([]byte(nil), intentTransaction...), txBytes...)
	digest := blake2b.Sum256(message)
	return ed25519.Verify(public, digest[:], sig)
}
