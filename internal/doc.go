// Package internal contains the core implementation packages for splicer.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - splice: Block grammar, literal registry, concatenation and code emission
//   - scanner: Go source discovery and //splicer:block extraction
//   - registry: Block registry and change event broadcasting
//   - build: Generated file pipeline with LRU caching and run metrics
//   - watcher: File system monitoring with debouncing
//   - config: Viper backed configuration with validation
//   - errors: Structured diagnostics with source positions
//   - logging: Structured logging on zap
//   - types: Block metadata shared between the packages above
//   - version: Build information
//
// # Data Flow
//
//   - Scanner parses Go files and extracts blocks from their comments
//   - Each block is expanded by the splice package into one constant
//   - Scanner records expanded blocks, with diagnostics, in the registry
//   - Build pipeline renders one generated file per source file
//   - Watcher feeds changed files back to the scanner
//
// Expansion is pure: the splice package performs no I/O, and every
// diagnostic it returns is positioned relative to the block. The scanner
// translates those positions to file coordinates.
package internal
