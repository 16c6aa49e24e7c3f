package cryptoutils

import (
	"bytes"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ruteri/ssh-key-server/interfaces"
	"golang.org/x/crypto/ssh"
)

const (
	ssh2BeginMarker = "---- BEGIN SSH2 PUBLIC KEY ----"
	ssh2EndMarker   = "---- END SSH2 PUBLIC KEY ----"
	pemBeginMarker  = "-----BEGIN "
)

// sshAlgorithms names the OpenSSH wire-format key algorithms in labels.
// Adding a key algorithm starts here.
var sshAlgorithms = map[string]string{
	ssh.KeyAlgoRSA:        "RSA",
	ssh.KeyAlgoDSA:        "DSA",
	ssh.KeyAlgoECDSA256:   "ECDSA",
	ssh.KeyAlgoECDSA384:   "ECDSA",
	ssh.KeyAlgoECDSA521:   "ECDSA",
	ssh.KeyAlgoSKECDSA256: "ECDSA-SK",
	ssh.KeyAlgoED25519:    "ED25519",
	ssh.KeyAlgoSKED25519:  "ED25519-SK",
}

// pemPrivateKeyTypes are PEM block types that carry private material and are
// never accepted as public keys.
var pemPrivateKeyTypes = map[string]string{
	"RSA PRIVATE KEY":       "PEM RSA private key",
	"DSA PRIVATE KEY":       "PEM DSA private key",
	"EC PRIVATE KEY":        "PEM EC private key",
	"PRIVATE KEY":           "PEM private key",
	"ENCRYPTED PRIVATE KEY": "PEM encrypted private key",
	"OPENSSH PRIVATE KEY":   "OpenSSH private key",
}

// keyMarker recognizes one key encoding by its structural markers. match
// returns ok only when the content is well formed.
type keyMarker struct {
	name  string
	match func(data []byte) (label string, ok bool)
}

var keyMarkers = []keyMarker{
	{name: "openssh", match: describeAuthorizedKey},
	{name: "rfc4716", match: describeSSH2PublicKey},
	{name: "pem", match: describePEM},
}

// Describe returns a human readable description of data, in the spirit of
// file(1): "OpenSSH RSA public key", "PEM DSA public key", or a MIME type
// such as "text/plain; charset=utf-8" when no key encoding matched.
func Describe(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return "empty"
	}
	for _, m := range keyMarkers {
		if label, ok := m.match(data); ok {
			return label
		}
	}
	return mimetype.Detect(data).String()
}

// MagicDetector classifies key bytes by content sniffing instead of trusting
// a client supplied type. It implements interfaces.KeyTypeDetector.
type MagicDetector struct {
	supported []interfaces.KeyType
	labelRe   *regexp.Regexp
}

// NewMagicDetector creates a detector recognizing the given key types, or
// interfaces.SupportedKeyTypes when none are given.
func NewMagicDetector(supported ...interfaces.KeyType) *MagicDetector {
	if len(supported) == 0 {
		supported = interfaces.SupportedKeyTypes
	}

	tags := make([]string, len(supported))
	for i, kt := range supported {
		tags[i] = regexp.QuoteMeta(kt.String())
	}

	return &MagicDetector{
		supported: supported,
		labelRe:   regexp.MustCompile(`(?i)\b(` + strings.Join(tags, "|") + `) public key\b`),
	}
}

// Detect implements interfaces.KeyTypeDetector.
func (d *MagicDetector) Detect(data []byte) (interfaces.KeyType, string, bool) {
	label := Describe(data)
	m := d.labelRe.FindStringSubmatch(label)
	if m == nil {
		return "", label, false
	}
	return interfaces.KeyType(strings.ToLower(m[1])), label, true
}

// Supported returns the key types this detector recognizes.
func (d *MagicDetector) Supported() []interfaces.KeyType {
	return append([]interfaces.KeyType(nil), d.supported...)
}

func sshAlgorithmName(keyType string) string {
	if name, ok := sshAlgorithms[keyType]; ok {
		return name
	}
	return strings.ToUpper(keyType)
}

// describeAuthorizedKey matches an authorized_keys style line such as
// "ssh-rsa AAAA... comment". Only the first non-comment line is considered.
func describeAuthorizedKey(data []byte) (string, bool) {
	var line []byte
	for _, l := range bytes.Split(data, []byte("\n")) {
		l = bytes.TrimSpace(l)
		if len(l) == 0 || l[0] == '#' {
			continue
		}
		line = l
		break
	}
	if line == nil {
		return "", false
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey(line)
	if err != nil {
		return "", false
	}
	if cert, ok := pub.(*ssh.Certificate); ok {
		return fmt.Sprintf("OpenSSH %s certificate", sshAlgorithmName(cert.Key.Type())), true
	}
	return fmt.Sprintf("OpenSSH %s public key", sshAlgorithmName(pub.Type())), true
}

// describeSSH2PublicKey matches the RFC 4716 "SSH2 PUBLIC KEY" file format.
func describeSSH2PublicKey(data []byte) (string, bool) {
	text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if !strings.HasPrefix(text, ssh2BeginMarker) {
		return "", false
	}
	end := strings.Index(text, ssh2EndMarker)
	if end < 0 {
		return "", false
	}

	var body strings.Builder
	continuation := false
	for _, line := range strings.Split(text[len(ssh2BeginMarker):end], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Header lines are "Tag: value" and may continue with a trailing backslash.
		if continuation || strings.Contains(line, ":") {
			continuation = strings.HasSuffix(line, `\`)
			continue
		}
		body.WriteString(line)
	}

	blob, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return "", false
	}
	pub, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("RFC4716 %s public key", sshAlgorithmName(pub.Type())), true
}

// describePEM matches PEM encoded PKCS#1 and PKIX public keys and labels
// private key blocks so they are rejected.
func describePEM(data []byte) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte(pemBeginMarker)) {
		return "", false
	}
	block, _ := pem.Decode(trimmed)
	if block == nil {
		return "", false
	}

	if label, ok := pemPrivateKeyTypes[block.Type]; ok {
		return label, true
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		if _, err := x509.ParsePKCS1PublicKey(block.Bytes); err != nil {
			return "", false
		}
		return "PEM RSA public key", true
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return "", false
		}
		switch pub.(type) {
		case *rsa.PublicKey:
			return "PEM RSA public key", true
		case *dsa.PublicKey:
			return "PEM DSA public key", true
		case *ecdsa.PublicKey:
			return "PEM ECDSA public key", true
		case ed25519.PublicKey:
			return "PEM ED25519 public key", true
		default:
			return "PEM public key", true
		}
	case "CERTIFICATE":
		return "PEM certificate", true
	default:
		return "PEM encoded data", true
	}
}
