package manager

import (
	"errors"

	"github.com/ChainSafe/go-nasm/disassembler"
	"github.com/ChainSafe/go-nasm/disassembler/ndisasm"
)

func NewDisassembler(typ disassembler.Type, opts disassembler.Options) (disassembler.Disassembler, error) {
	switch typ {
	case disassembler.TypeNdisasm:
		dis, err := ndisasm.New(opts)
		if err != nil {
			return nil, err
		}
		return dis, nil
	default:
		return nil, errors.New("disassembler not supported")
	}
}
