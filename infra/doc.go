// Package infra contains technical adapters such as the SQLite schedule
// store, the consumption oracle and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
