// Package readlater turns arbitrary web URLs into normalized, self-contained
// article records: a clean title, a plain-text excerpt, a Markdown body,
// absolute image references and an estimated reading time.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, goquery/).
package readlater
