// Package mo reads and writes GNU gettext binary catalogs (.mo files).
package mo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ZaguanLabs/l10ncache"
)

const (
	magicLE    = 0x950412de
	magicBE    = 0xde120495
	headerSize = 28
)

// Parser implements l10ncache.CatalogParser for .mo files.
type Parser struct{}

// NewParser returns a .mo parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the .mo file at path.
func (p *Parser) ParseFile(path string) (*l10ncache.Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 - translation paths come from the host
	if err != nil {
		return nil, &l10ncache.ParseError{Path: path, Message: "reading file", Cause: err}
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, &l10ncache.ParseError{Path: path, Message: err.Error()}
	}
	return cat, nil
}

// Parse decodes a .mo catalog. Entry keys keep the "context\x04msgid" form;
// plural translations become one slice element per form.
func Parse(data []byte) (*l10ncache.Catalog, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("file too short (%d bytes)", len(data))
	}

	var order binary.ByteOrder
	switch binary.LittleEndian.Uint32(data) {
	case magicLE:
		order = binary.LittleEndian
	case magicBE:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("bad magic number %#x", binary.LittleEndian.Uint32(data))
	}

	if revision := order.Uint32(data[4:]); revision>>16 > 1 {
		return nil, fmt.Errorf("unsupported revision %d", revision)
	}

	count := order.Uint32(data[8:])
	origTable := order.Uint32(data[12:])
	transTable := order.Uint32(data[16:])

	for _, table := range []uint32{origTable, transTable} {
		if uint64(table)+uint64(count)*8 > uint64(len(data)) {
			return nil, fmt.Errorf("string table at %d with %d entries exceeds file size %d", table, count, len(data))
		}
	}

	str := func(table uint32, i int) (string, error) {
		at := int(table) + i*8
		if at < 0 || at+8 > len(data) {
			return "", fmt.Errorf("string table entry %d out of bounds", i)
		}
		length := int(order.Uint32(data[at:]))
		offset := int(order.Uint32(data[at+4:]))
		if offset < 0 || length < 0 || offset+length > len(data) {
			return "", fmt.Errorf("string %d out of bounds", i)
		}
		return string(data[offset : offset+length]), nil
	}

	cat := &l10ncache.Catalog{
		Headers: make(map[string]string),
		Entries: make(map[string][]string, count),
	}

	for i := 0; i < int(count); i++ {
		original, err := str(origTable, i)
		if err != nil {
			return nil, err
		}
		translation, err := str(transTable, i)
		if err != nil {
			return nil, err
		}

		if original == "" {
			cat.Headers = ParseHeaders(translation)
			continue
		}

		key, _, _ := strings.Cut(original, "\x00")
		cat.Entries[key] = strings.Split(translation, "\x00")
	}

	return cat, nil
}

// ParseHeaders splits a catalog header block ("Name: value" lines).
func ParseHeaders(block string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

// Marshal encodes cat as a little-endian .mo file without a hash table.
// A Catalog does not keep the plural msgid, so plural entries repeat the
// singular in its place.
func Marshal(cat *l10ncache.Catalog) []byte {
	type pair struct{ original, translation string }

	pairs := make([]pair, 0, len(cat.Entries)+1)
	if len(cat.Headers) > 0 {
		names := make([]string, 0, len(cat.Headers))
		for name := range cat.Headers {
			names = append(names, name)
		}
		sort.Strings(names)

		var block strings.Builder
		for _, name := range names {
			block.WriteString(name + ": " + cat.Headers[name] + "\n")
		}
		pairs = append(pairs, pair{"", block.String()})
	}

	for key, forms := range cat.Entries {
		original := key
		if len(forms) > 1 {
			original += "\x00" + key
		}
		pairs = append(pairs, pair{original, strings.Join(forms, "\x00")})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].original < pairs[j].original })

	n := len(pairs)
	origTable := headerSize
	transTable := origTable + n*8
	offset := transTable + n*8

	var strs bytes.Buffer
	orig := make([]uint32, 0, n*2)
	trans := make([]uint32, 0, n*2)
	for _, p := range pairs {
		orig = append(orig, uint32(len(p.original)), uint32(offset+strs.Len()))
		strs.WriteString(p.original)
		strs.WriteByte(0)
	}
	for _, p := range pairs {
		trans = append(trans, uint32(len(p.translation)), uint32(offset+strs.Len()))
		strs.WriteString(p.translation)
		strs.WriteByte(0)
	}

	var out bytes.Buffer
	le := binary.LittleEndian
	for _, v := range []uint32{magicLE, 0, uint32(n), uint32(origTable), uint32(transTable), 0, uint32(offset)} {
		out.Write(le.AppendUint32(nil, v))
	}
	for _, v := range orig {
		out.Write(le.AppendUint32(nil, v))
	}
	for _, v := range trans {
		out.Write(le.AppendUint32(nil, v))
	}
	out.Write(strs.Bytes())

	return out.Bytes()
}

// WriteFile writes cat to path in .mo format.
func WriteFile(path string, cat *l10ncache.Catalog) error {
	return os.WriteFile(path, Marshal(cat), 0o644) // #nosec G306 - catalogs are world-readable
}

var _ l10ncache.CatalogParser = (*Parser)(nil)
