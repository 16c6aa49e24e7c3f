package cryptoutils

import (
	"crypto/dsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"

	"golang.org/x/crypto/ssh"
)

// Helpers generating throwaway public keys, used by tests across packages.

var (
	dsaParamsOnce sync.Once
	dsaParams     dsa.Parameters
	dsaParamsErr  error
)

// GenerateRSAAuthorizedKey returns a fresh RSA public key in authorized_keys
// format with the given comment.
func GenerateRSAAuthorizedKey(comment string) ([]byte, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return marshalAuthorizedKey(&priv.PublicKey, comment)
}

// GenerateRSAPublicKeyPEM returns a fresh RSA public key as a PKIX PEM block.
func GenerateRSAPublicKeyPEM() ([]byte, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// GenerateDSAAuthorizedKey returns a fresh DSA public key in authorized_keys
// format. Domain parameters are generated once per process.
func GenerateDSAAuthorizedKey(comment string) ([]byte, error) {
	dsaParamsOnce.Do(func() {
		dsaParamsErr = dsa.GenerateParameters(&dsaParams, rand.Reader, dsa.L1024N160)
	})
	if dsaParamsErr != nil {
		return nil, fmt.Errorf("generate dsa parameters: %w", dsaParamsErr)
	}

	priv := &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: dsaParams}}
	if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
		return nil, fmt.Errorf("generate dsa key: %w", err)
	}
	return marshalAuthorizedKey(&priv.PublicKey, comment)
}

// GenerateEd25519AuthorizedKey returns a fresh Ed25519 public key in
// authorized_keys format.
func GenerateEd25519AuthorizedKey(comment string) ([]byte, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return marshalAuthorizedKey(pub, comment)
}

func marshalAuthorizedKey(pub any, comment string) ([]byte, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("create ssh public key: %w", err)
	}
	line := ssh.MarshalAuthorizedKey(sshPub)
	if comment == "" {
		return line, nil
	}
	// MarshalAuthorizedKey terminates the line with a newline.
	return append(append(line[:len(line)-1], ' '), append([]byte(comment), '\n')...), nil
}
