// Package app provides the application service layer.
//
// Orchestrates the two rating use cases: request creation (admission check,
// record, create, deliver) and submission (complete, announce, retract).
// Sits between HTTP handlers and the domain components. Depends on domain
// interfaces, not concrete implementations.
package app
