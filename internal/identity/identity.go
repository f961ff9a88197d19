// Package identity derives agent signing identities from seed phrases.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// AddressPrefix marks an agent address on the wire.
const AddressPrefix = "agent1"

var (
	ErrEmptySeed        = errors.New("seed phrase must not be empty")
	ErrInvalidAddress   = errors.New("invalid agent address")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Identity is a local signing identity derived from a seed phrase.
type Identity struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
}

// FromSeed derives a deterministic identity from a seed phrase and key
// index. The same phrase and index always yield the same address.
func FromSeed(phrase string, index int) (*Identity, error) {
	if phrase == "" {
		return nil, ErrEmptySeed
	}

	info := make([]byte, 8)
	binary.BigEndian.PutUint64(info, uint64(index))

	reader := hkdf.New(sha256.New, []byte(phrase), []byte("foldspace-agent-identity"), info)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("derive key material: %w", err)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	return &Identity{
		privateKey: priv,
		publicKey:  pub,
		address:    AddressPrefix + hex.EncodeToString(pub),
	}, nil
}

// Generate creates a new random identity. Used by genkey when no seed
// phrase is supplied.
func Generate() (*Identity, string, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return nil, "", err
	}
	phrase := hex.EncodeToString(entropy)
	id, err := FromSeed(phrase, 0)
	return id, phrase, err
}

// Address returns the agent address ("agent1" + hex public key).
func (i *Identity) Address() string {
	return i.address
}

// PublicKey returns the identity's Ed25519 public key.
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.publicKey
}

// Sign signs data with the identity's private key and returns the
// signature base64-encoded.
func (i *Identity) Sign(data []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(i.privateKey, data))
}

// PublicKeyFromAddress recovers the Ed25519 public key embedded in an
// agent address.
func PublicKeyFromAddress(address string) (ed25519.PublicKey, error) {
	if len(address) <= len(AddressPrefix) || address[:len(AddressPrefix)] != AddressPrefix {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidAddress, AddressPrefix)
	}
	decoded, err := hex.DecodeString(address[len(AddressPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidAddress, ed25519.PublicKeySize, len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}

// Verify checks a base64 signature over data against the public key
// embedded in the sender address.
func Verify(address string, data []byte, signatureB64 string) error {
	pubkey, err := PublicKeyFromAddress(address)
	if err != nil {
		return err
	}
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("%w: invalid base64 encoding", ErrInvalidSignature)
	}
	if !ed25519.Verify(pubkey, data, signature) {
		return ErrInvalidSignature
	}
	return nil
}
