package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const (
	// ed25519 signature scheme flag
	schemeFlag = byte(0x00)
	// intent prefix for a transaction: scope, version, app id
	intentScope = "\x00\x00\x00"
)

// Wallet struct
type Wallet struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
}

// Address returns the account address: 0x followed by the hex blake2b-256
// hash of the scheme flag and the public key.
func (w Wallet) Address() string {
	return PublicKeyAddress(w.PublicKey)
}

// PublicKeyAddress function
func PublicKeyAddress(pubKey []byte) string {
	hash := blake2b.Sum256(append([]byte{schemeFlag}, pubKey...))
	return "0x" + hex.EncodeToString(hash[:])
}

// NewKeyPair function
func NewKeyPair() (ed25519.PrivateKey, ed25519.PublicKey, error) {
	pub, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return private, pub, nil
}

// MakeWallet function
func MakeWallet() (*Wallet, error) {
	private, public, err := NewKeyPair()
	if err != nil {
		return nil, err
	}
	return &Wallet{PrivateKey: private, PublicKey: public}, nil
}

// Sign signs transaction bytes the way the ledger expects: the blake2b-256
// digest of intent||tx is signed, and the result is serialised as
// flag||signature||public key.
func (w Wallet) Sign(txBytes []byte) []byte {
	digest := blake2b.Sum256(append([]byte(intentScope), txBytes...))
	sig := ed25519.Sign(w.PrivateKey, digest[:])

	out := make([]byte, 0, 1+len(sig)+len(w.PublicKey))
	out = append(out, schemeFlag)
	out = append(out, sig...)
	return append(out, w.PublicKey...)
}

// Verify checks a serialised signature produced by Sign and returns the
// address of the key that made it.
func Verify(txBytes, serialized []byte) (string, bool) {
	if len(serialized) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || serialized[0] != schemeFlag {
		return "", false
	}
	sig := serialized[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(serialized[1+ed25519.SignatureSize:])
	digest := blake2b.Sum256(append([]byte(intentScope), txBytes...))
	if !ed25519.Verify(pub, digest[:], sig) {
		return "", false
	}
	return PublicKeyAddress(pub), true
}
