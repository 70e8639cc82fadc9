package wasm

// pageSize is the WebAssembly page size in bytes.
const pageSize = 65536

// storeModule returns the binary of a module whose only content is one exported
// linear memory of minPages pages:
//
//	(module (memory (export "memory") minPages))
func storeModule(minPages uint32) []byte {
	memory := append([]byte{0x01, 0x00}, encodeULEB128(minPages)...) // one memory, min only

	name := "memory"
	export := []byte{0x01, byte(len(name))}
	export = append(export, name...)
	export = append(export, 0x02, 0x00) // memory index 0

	bin := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
	bin = appendSection(bin, 0x05, memory)
	bin = appendSection(bin, 0x07, export)
	return bin
}

func appendSection(bin []byte, id byte, payload []byte) []byte {
	bin = append(bin, id)
	bin = append(bin, encodeULEB128(uint32(len(payload)))...)
	return append(bin, payload...)
}

func encodeULEB128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}
