// Package types provides common type definitions used throughout splicer.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"fmt"
	"time"
)

// BlockInfo describes one splice block discovered in a Go source file,
// together with the outcome of expanding it.
type BlockInfo struct {
	// Output is the constant name the block defines
	Output string
	// Package is the Go package name of the source file
	Package string
	// Dir is the directory of the source file; constants must be unique per Dir
	Dir string
	// FilePath is the path of the Go file containing the block
	FilePath string
	// Line is the file line of the //splicer:block marker
	Line int
	// Inputs lists the referenced binding names in request order
	Inputs []string
	// Value is the concatenated constant value (empty when Err is set)
	Value string
	// Declaration is the emitted Go declaration
	Declaration string
	// Hash is the CRC32 checksum of the containing file
	Hash string
	// LastMod tracks the modification time of the containing file
	LastMod time.Time
	// BuildTags carries the //go:build constraint of the source file
	BuildTags string
	// Err holds the expansion diagnostic, if any
	Err error
}

// ID identifies a block by its position in the source tree.
func (b *BlockInfo) ID() string {
	return fmt.Sprintf("%s:%d", b.FilePath, b.Line)
}

// OutputKey identifies the constant a block defines within its package.
func (b *BlockInfo) OutputKey() string {
	return b.Dir + "#" + b.Output
}

// Valid reports whether the block expanded without error.
func (b *BlockInfo) Valid() bool {
	return b.Err == nil
}

// EventType represents the type of block change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// BlockEvent represents a change in the block registry.
type BlockEvent struct {
	Type      EventType
	Block     *BlockInfo
	Timestamp time.Time
}
