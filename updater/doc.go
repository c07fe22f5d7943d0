// Package updater is the refresh orchestrator wiring the feed client, the
// converter and the store into one scheduled job.
package updater
