// Package common holds process-wide values and the logger setup shared by
// the server and the CLI.
package common

// Version is overridden at build time with
// -ldflags "-X github.com/ruteri/ssh-key-server/common.Version=..."
var Version = "0.0.1"

// PackageName is used as the metrics namespace.
const PackageName = "keyserver"
