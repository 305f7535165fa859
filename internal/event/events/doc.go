// Package events defines the topics and payloads published by editor
// sessions.
package events
