// Package client contains the client-side building blocks that talk to the
// dealership backend.
//
// # Overview
//
//  1. A resource contract (see ResourceClient) covering list, create,
//     update and remove for one resource descriptor.
//  2. A JSON-over-HTTP implementation (see Transport and HTTPClient) that
//     stamps every request with a request id and the bearer token of the
//     login session, and classifies failures.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns exactly one of *TransportError, *ServerError or
// *DecodeError. Common conditions match sentinel errors with errors.Is:
// ErrUnavailable, ErrNotFound, ErrUnauthorized. Nothing is retried.
package client
