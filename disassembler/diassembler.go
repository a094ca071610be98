// Package disassembler defines the interface implemented by disassembler
// backends. Backends are constructed through the manager package.
package disassembler

import "context"

type Source int64

const (
	// SourceBinary disassembles a raw binary as is.
	SourceBinary Source = iota + 1
	// SourceFile assembles an assembly source file to a flat binary first.
	SourceFile
)

type Disassembler interface {
	Disassemble(ctx context.Context, mode Source, target string, outputPath string) (string, error)
}

type Type int64

const (
	TypeNdisasm Type = iota + 1
)

// Options configure a disassembler backend.
type Options struct {
	Disassembler string // explicit disassembler path, discovered when empty
	Assembler    string // explicit assembler path for SourceFile
	Bits         int    // 16, 32 or 64; 0 leaves the backend default
	Origin       uint64 // load address of the first byte
	Skip         int    // header bytes to skip
}
