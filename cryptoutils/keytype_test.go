package cryptoutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/ruteri/ssh-key-server/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestMagicDetector_OpenSSH(t *testing.T) {
	detector := NewMagicDetector()

	rsaKey, err := GenerateRSAAuthorizedKey("alice@example.com")
	require.NoError(t, err)
	kt, label, ok := detector.Detect(rsaKey)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeRSA, kt)
	assert.Equal(t, "OpenSSH RSA public key", label)

	dsaKey, err := GenerateDSAAuthorizedKey("")
	require.NoError(t, err)
	kt, label, ok = detector.Detect(dsaKey)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeDSA, kt)
	assert.Equal(t, "OpenSSH DSA public key", label)
}

func TestMagicDetector_CommentLinesBeforeKey(t *testing.T) {
	rsaKey, err := GenerateRSAAuthorizedKey("")
	require.NoError(t, err)

	data := append([]byte("# deploy key\n\n"), rsaKey...)
	kt, _, ok := NewMagicDetector().Detect(data)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeRSA, kt)
}

func TestMagicDetector_UnsupportedAlgorithms(t *testing.T) {
	detector := NewMagicDetector()

	edKey, err := GenerateEd25519AuthorizedKey("")
	require.NoError(t, err)
	kt, label, ok := detector.Detect(edKey)
	assert.False(t, ok)
	assert.Empty(t, kt)
	assert.Equal(t, "OpenSSH ED25519 public key", label)

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecKey, err := marshalAuthorizedKey(&priv.PublicKey, "")
	require.NoError(t, err)
	_, label, ok = detector.Detect(ecKey)
	assert.False(t, ok, "ecdsa must not be classified as dsa")
	assert.Equal(t, "OpenSSH ECDSA public key", label)
}

func TestMagicDetector_ExtendedTypes(t *testing.T) {
	detector := NewMagicDetector(interfaces.KeyTypeRSA, interfaces.KeyType("ed25519"))

	edKey, err := GenerateEd25519AuthorizedKey("")
	require.NoError(t, err)
	kt, _, ok := detector.Detect(edKey)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyType("ed25519"), kt)

	dsaKey, err := GenerateDSAAuthorizedKey("")
	require.NoError(t, err)
	_, _, ok = detector.Detect(dsaKey)
	assert.False(t, ok)

	assert.Equal(t, []interfaces.KeyType{interfaces.KeyTypeRSA, "ed25519"}, detector.Supported())
}

func TestMagicDetector_PEM(t *testing.T) {
	detector := NewMagicDetector()

	pkix, err := GenerateRSAPublicKeyPEM()
	require.NoError(t, err)
	kt, label, ok := detector.Detect(pkix)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeRSA, kt)
	assert.Equal(t, "PEM RSA public key", label)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey)})
	kt, _, ok = detector.Detect(pkcs1)
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeRSA, kt)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	_, label, ok = detector.Detect(privPEM)
	assert.False(t, ok, "private keys must be rejected")
	assert.Equal(t, "PEM RSA private key", label)
}

func TestMagicDetector_RFC4716(t *testing.T) {
	rsaKey, err := GenerateRSAAuthorizedKey("")
	require.NoError(t, err)
	pub, _, _, _, err := ssh.ParseAuthorizedKey(rsaKey)
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString(pub.Marshal())
	var b strings.Builder
	b.WriteString(ssh2BeginMarker + "\n")
	b.WriteString("Comment: \"2048-bit RSA, converted by alice@example.com \\\n")
	b.WriteString("from OpenSSH\"\n")
	for len(encoded) > 70 {
		b.WriteString(encoded[:70] + "\n")
		encoded = encoded[70:]
	}
	b.WriteString(encoded + "\n")
	b.WriteString(ssh2EndMarker + "\n")

	kt, label, ok := NewMagicDetector().Detect([]byte(b.String()))
	assert.True(t, ok)
	assert.Equal(t, interfaces.KeyTypeRSA, kt)
	assert.Equal(t, "RFC4716 RSA public key", label)
}

func TestMagicDetector_NotAKey(t *testing.T) {
	detector := NewMagicDetector()

	tests := []struct {
		name  string
		data  []byte
		label string
	}{
		{"plain text", []byte("hello"), "text/plain; charset=utf-8"},
		{"empty", []byte{}, "empty"},
		{"whitespace", []byte("  \n"), "empty"},
		{"truncated openssh", []byte("ssh-rsa AAAAB3NzaC1yc2E= user@host\n"), "text/plain; charset=utf-8"},
		{"binary", []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, "application/octet-stream"},
		{"label spoof", []byte("this is an RSA public key, trust me"), "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kt, label, ok := detector.Detect(tt.data)
			assert.False(t, ok)
			assert.Empty(t, kt)
			assert.NotEmpty(t, label)
			assert.Equal(t, tt.label, label)
		})
	}
}
