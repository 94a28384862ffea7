// Package platformtest provides in-memory repositories and fakes for testing
// the administration use cases and HTTP handlers without MongoDB.
//
// The repositories enforce the same conditional-write and uniqueness rules
// as the Mongo implementations, so exactly-once and duplicate tests are
// meaningful against them.
package platformtest
