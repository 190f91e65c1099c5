// Package cli provides the interactive SellingCar administration client.
//
// It wires configuration, local storage, the resource catalog and an
// interactive REPL. Each "open <resource>" mounts a fresh list view for that
// resource; the previous view is unmounted, so late results of its requests
// are discarded.
//
// Key features:
//   - Home screen listing every resource section
//   - List / add / edit / delete records of the open resource
//   - Login with national id and phone number, whoami, logout
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
