// Package testutil provides fluent builders for domain objects used across
// the test suites. It is internal: tests only, no API stability promises.
package testutil
