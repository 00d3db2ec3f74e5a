// Package formats provides parsers for level file formats.
package formats

// Note: Quake .map (entities and brushes) is implemented in map.go
// Note: the tokenizer for .map text lives in map_lexer.go
