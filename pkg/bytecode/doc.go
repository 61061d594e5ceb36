// Package bytecode implements the stack-machine program image for the Sable
// compiler: a growable instruction buffer, a run-length encoded
// source-position table, and an append-only constant pool.
//
// The bytecode format is designed for:
//   - Compact representation (typically 1-4 bytes per instruction)
//   - Fast decoding (fixed-width opcodes, operand widths determined solely
//     by the opcode tag)
//   - Easy serialization (chunk images can be cached on disk or passed
//     between processes)
//
// # Architecture Overview
//
//   - Opcodes: ~35 stack-based instructions covering constants, arithmetic,
//     comparison, control flow, globals, calls, and arrays. Constant loads
//     come in two addressing widths: a one-byte form for pool indices below
//     256 and a three-byte big-endian long form for the rest.
//
//   - Chunk: the compiled unit containing code, constants, and positions.
//     Chunks serialize to the "SBLC" image format for storage or transport.
//
//   - Disassembler: renders chunks as human-readable listings for
//     debugging and golden tests.
//
// # Error Policy
//
// Structural decode failures (out-of-range operand or constant index) panic:
// they indicate a corrupt program image produced by a buggy earlier phase,
// not a recoverable user condition. Position lookups past the end of the
// table degrade to sentinel values instead, since missing position info only
// weakens diagnostics.
//
// The compiler driver consults the symtable package to resolve names and
// writes encoded operations here; the regir package consumes finished chunks
// to produce register-machine images.
package bytecode
