// Package models contains the domain types shared across storage,
// services and the HTTP API.
package models
