// Package bootstrap prepares builds of the geyser service on machines that
// don't ship the tools the build assumes: it locates a POSIX shell, points
// PROTOC at a local protobuf compiler if one is installed and runs the
// configured build command with the prepared environment.
package bootstrap
