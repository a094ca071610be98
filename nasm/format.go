package nasm

import (
	"path/filepath"
	"strings"
)

// OutputFormat selects the assembler's output format. It is passed to nasm as
// the value of the -f flag. The named constants cover the formats nasm ships
// with; any other non-empty value is forwarded verbatim (see CustomFormat).
type OutputFormat string

const (
	FormatBinary  OutputFormat = "bin"
	FormatIth     OutputFormat = "ith"
	FormatSRec    OutputFormat = "srec"
	FormatObj     OutputFormat = "obj"
	FormatWin32   OutputFormat = "win32"
	FormatWin64   OutputFormat = "win64"
	FormatCoff    OutputFormat = "coff"
	FormatMacho32 OutputFormat = "macho32"
	FormatMacho64 OutputFormat = "macho64"
	FormatElf32   OutputFormat = "elf32"
	FormatElf64   OutputFormat = "elf64"
	FormatElfx32  OutputFormat = "elfx32"
	FormatAout    OutputFormat = "aout"
	FormatAoutb   OutputFormat = "aoutb"
	FormatAs86    OutputFormat = "as86"
	FormatDbg     OutputFormat = "dbg"
)

// DefaultFormat is used on the command line when no format was set.
const DefaultFormat = FormatBinary

// extension policy: "" strips the extension of the input file.
type formatInfo struct {
	ext         string
	description string
}

var knownFormats = map[OutputFormat]formatInfo{
	FormatBinary:  {"", "Flat raw binary (MS-DOS, embedded, ...)"},
	FormatIth:     {".ith", "Intel Hex encoded flat binary"},
	FormatSRec:    {".srec", "Motorola S-records encoded flat binary"},
	FormatObj:     {".obj", "Intel/Microsoft OMF (MS-DOS, OS/2, Win16)"},
	FormatWin32:   {".obj", "Microsoft extended COFF for Win32 (i386)"},
	FormatWin64:   {".obj", "Microsoft extended COFF for Win64 (x86-64)"},
	FormatCoff:    {".o", "COFF (i386) (DJGPP, some Unix variants)"},
	FormatMacho32: {".o", "Mach-O i386 (Mach, including MacOS X and variants)"},
	FormatMacho64: {".o", "Mach-O x86-64 (Mach, including MacOS X and variants)"},
	FormatElf32:   {".o", "ELF32 (i386) (Linux, most Unix variants)"},
	FormatElf64:   {".o", "ELF64 (x86-64) (Linux, most Unix variants)"},
	FormatElfx32:  {".o", "ELFx32 (ELF32 for x86-64) (Linux)"},
	FormatAout:    {".o", "Linux a.out"},
	FormatAoutb:   {".o", "NetBSD/FreeBSD a.out"},
	FormatAs86:    {".o", "Linux as86 (bin86 version 0.3) object files"},
	FormatDbg:     {".dbg", "Trace of all info passed to output stage"},
}

// order in which formats are listed, matches `nasm -hf`.
var formatOrder = []OutputFormat{
	FormatBinary, FormatIth, FormatSRec, FormatObj, FormatWin32, FormatWin64,
	FormatCoff, FormatMacho32, FormatMacho64, FormatElf32, FormatElf64,
	FormatElfx32, FormatAout, FormatAoutb, FormatAs86, FormatDbg,
}

var formatAliases = map[string]OutputFormat{
	"binary": FormatBinary,
	"ihex":   FormatIth,
	"macho":  FormatMacho32,
	"elf":    FormatElf32,
	"win":    FormatWin32,
}

// CustomFormat returns a format that is passed to the assembler unchanged.
// It has no default extension, so an explicit output path is required.
func CustomFormat(flag string) OutputFormat {
	return OutputFormat(flag)
}

// ParseFormat maps a user supplied name to a format. Known names and their
// aliases are matched case-insensitively; anything else becomes a custom
// format. An empty name yields the empty (unset) format.
func ParseFormat(name string) OutputFormat {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	if _, ok := knownFormats[OutputFormat(lower)]; ok {
		return OutputFormat(lower)
	}
	if f, ok := formatAliases[lower]; ok {
		return f
	}
	return OutputFormat(trimmed)
}

// Formats returns the known formats in listing order.
func Formats() []OutputFormat {
	out := make([]OutputFormat, len(formatOrder))
	copy(out, formatOrder)
	return out
}

// Flag returns the -f value for the format.
func (f OutputFormat) Flag() string {
	if f == "" {
		return string(DefaultFormat)
	}
	return string(f)
}

func (f OutputFormat) String() string {
	return f.Flag()
}

// Known reports whether f is one of the named formats.
func (f OutputFormat) Known() bool {
	_, ok := knownFormats[f]
	return ok
}

// Extension returns the extension used for derived output paths. The empty
// string means the input extension is stripped. ok is false for custom formats.
func (f OutputFormat) Extension() (ext string, ok bool) {
	if f == "" {
		f = DefaultFormat
	}
	info, ok := knownFormats[f]
	return info.ext, ok
}

// Description returns the summary nasm prints for the format, or "" for
// custom formats.
func (f OutputFormat) Description() string {
	return knownFormats[f].description
}

// DeriveOutputPath computes the default output path for file when assembled
// with format.
func DeriveOutputPath(format OutputFormat, file string) (string, error) {
	ext, ok := format.Extension()
	if !ok {
		return "", &OutputPathRequiredError{Format: format}
	}
	out := replaceExt(file, ext)
	if out == file {
		// an extensionless input would be overwritten by flat binary output
		return "", &OutputPathRequiredError{Format: format}
	}
	return out, nil
}

func replaceExt(file, ext string) string {
	base := filepath.Base(file)
	old := filepath.Ext(base)
	// dot files such as ".s" have no extension
	if old == base {
		old = ""
	}
	return strings.TrimSuffix(file, old) + ext
}
