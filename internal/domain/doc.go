// Package domain defines the core domain types and interfaces.
//
// Model types (RatingRequest, triggers), the closed error set, and the
// contracts between the coordinator, the in-memory stores and the Slack
// gateway. No implementation code - just contracts. Keeping interfaces here
// prevents circular imports between the app and transport layers.
package domain
