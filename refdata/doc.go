// Package refdata holds the static station reference table (code, display
// name, timezone). The upstream feed carries no timezone information, so
// every timestamp interpretation goes through this lookup.
package refdata
