// Package cryptoutils classifies uploaded SSH public key material.
//
// Clients never say which algorithm a key uses; the server inspects the
// bytes instead. [Describe] produces a file(1) style label by checking, in
// order, for:
//
//   - an OpenSSH authorized_keys line ("ssh-rsa AAAA... comment"),
//   - an RFC 4716 "---- BEGIN SSH2 PUBLIC KEY ----" block,
//   - a PEM block (PKCS#1 "RSA PUBLIC KEY" or PKIX "PUBLIC KEY").
//
// Every marker must be well formed: the encoded key is parsed with
// golang.org/x/crypto/ssh or crypto/x509, so a line that merely starts with
// "ssh-rsa" is not a key. Content matching none of them is labelled with its
// sniffed MIME type.
//
// [MagicDetector] turns a label into a key type by matching
// "<tag> public key" against its supported set, so "OpenSSH ECDSA public key"
// never counts as dsa and private key blocks are never accepted.
//
//	detector := cryptoutils.NewMagicDetector()
//	kt, label, ok := detector.Detect(body)
//	if !ok {
//	    return fmt.Errorf("invalid key type, identified as: %s", label)
//	}
package cryptoutils
