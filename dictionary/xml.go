package dictionary

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/internal/xerr"
)

// Parse reads the xmlDict subset (xmlDict, dictEntry, bank, leaf,
// description) from r and returns the expanded Dictionary. Hierarchical
// bank/leaf elements establish parent/child name contexts producing
// dotted names like "HallD.DC.xpos".
//
// Dictionaries embedded by older evio writers sometimes declare a
// non-UTF-8 encoding (e.g. "ISO-8859-1") in the XML prolog; CharsetReader
// looks that declared name up and transcodes to UTF-8 on the fly, the same
// declared-encoding-to-UTF-8 transform laenix-ewfgo's EWF header reader
// applies to its UTF-16 text fields.
func Parse(r io.Reader) (*Dictionary, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := ianaindex.IANA.Encoding(charset)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("%w: unsupported dictionary charset %q: %v", xerr.ErrDictionaryParse, charset, err)
		}
		return transform.NewReader(input, enc.NewDecoder()), nil
	}
	d := newDictionary()

	var nameStack []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerr.ErrDictionaryParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "xmlDict", "description":
				// containers with no naming contribution
			case "bank", "leaf":
				name, err := attr(t, "name")
				if err != nil {
					return nil, err
				}
				nameStack = append(nameStack, name)
				if t.Name.Local == "leaf" || hasAttr(t, "tag") {
					entries, err := entriesFromAttrs(t, strings.Join(nameStack, "."))
					if err != nil {
						return nil, err
					}
					for _, e := range entries {
						if err := d.add(e); err != nil {
							return nil, err
						}
					}
				}
			case "dictEntry":
				name, err := attr(t, "name")
				if err != nil {
					return nil, err
				}
				full := name
				if len(nameStack) > 0 {
					full = strings.Join(append(append([]string{}, nameStack...), name), ".")
				}
				entries, err := entriesFromAttrs(t, full)
				if err != nil {
					return nil, err
				}
				for _, e := range entries {
					if err := d.add(e); err != nil {
						return nil, err
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "bank" || t.Name.Local == "leaf" {
				if len(nameStack) > 0 {
					nameStack = nameStack[:len(nameStack)-1]
				}
			}
		}
	}

	return d, nil
}

func attr(t xml.StartElement, name string) (string, error) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, nil
		}
	}
	return "", fmt.Errorf("%w: <%s> missing required attribute %q", xerr.ErrDictionaryParse, t.Name.Local, name)
}

func hasAttr(t xml.StartElement, name string) bool {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func optAttr(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// entriesFromAttrs builds one expanded Entry per tag in a "tag-tagEnd"
// range (or a single entry for a bare tag), carrying an optional num
// (which may be "%n" to defer) and an optional payload type.
func entriesFromAttrs(t xml.StartElement, name string) ([]Entry, error) {
	tagAttr, err := attr(t, "tag")
	if err != nil {
		return nil, err
	}

	tagStart, tagEnd, err := parseTagRange(tagAttr)
	if err != nil {
		return nil, err
	}

	var num uint8
	hasNum := false
	deferred := false
	if numAttr, ok := optAttr(t, "num"); ok {
		if numAttr == "%n" {
			deferred = true
		} else {
			n, err := strconv.ParseUint(numAttr, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: bad num attribute %q: %v", xerr.ErrDictionaryParse, numAttr, err)
			}
			num = uint8(n)
			hasNum = true
		}
	}

	var typ dtype.Type
	if typAttr, ok := optAttr(t, "type"); ok {
		parsed, err := parseTypeName(typAttr)
		if err != nil {
			return nil, err
		}
		typ = parsed
	}

	if deferred {
		// A deferred num ("%n") is recorded as a single entry without a
		// fixed num; callers supply num at lookup time via hasNum=false.
		return []Entry{{Name: name, Key: Key{Tag: tagStart, TagEnd: boolTagEnd(tagStart, tagEnd), HasNum: false}, Type: typ}}, nil
	}

	if tagStart == tagEnd {
		return []Entry{{Name: name, Key: Key{Tag: tagStart, Num: num, HasNum: hasNum}, Type: typ}}, nil
	}

	entries := make([]Entry, 0, int(tagEnd-tagStart)+1)
	for tg := tagStart; tg <= tagEnd; tg++ {
		entries = append(entries, Entry{Name: name, Key: Key{Tag: tg, Num: num, HasNum: hasNum}, Type: typ})
	}
	return entries, nil
}

func boolTagEnd(start, end uint16) uint16 {
	if start == end {
		return 0
	}
	return end
}

func parseTagRange(s string) (start, end uint16, err error) {
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		lo, err := strconv.ParseUint(s[:idx], 10, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad tag range %q: %v", xerr.ErrDictionaryParse, s, err)
		}
		hi, err := strconv.ParseUint(s[idx+1:], 10, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad tag range %q: %v", xerr.ErrDictionaryParse, s, err)
		}
		return uint16(lo), uint16(hi), nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad tag %q: %v", xerr.ErrDictionaryParse, s, err)
	}
	return uint16(v), uint16(v), nil
}

func parseTypeName(s string) (dtype.Type, error) {
	switch strings.ToLower(s) {
	case "int8":
		return dtype.Int8, nil
	case "uint8":
		return dtype.Uint8, nil
	case "int16":
		return dtype.Int16, nil
	case "uint16":
		return dtype.Uint16, nil
	case "int32":
		return dtype.Int32, nil
	case "uint32":
		return dtype.Uint32, nil
	case "int64":
		return dtype.Int64, nil
	case "uint64":
		return dtype.Uint64, nil
	case "float32":
		return dtype.Float32, nil
	case "float64", "double":
		return dtype.Float64, nil
	case "string", "charstar8":
		return dtype.CharStar8, nil
	case "composite":
		return dtype.Composite, nil
	case "bank":
		return dtype.Bank, nil
	case "segment":
		return dtype.Segment, nil
	case "tagsegment":
		return dtype.Tagsegment, nil
	default:
		return 0, fmt.Errorf("%w: unknown dictionary type %q", xerr.ErrDictionaryParse, s)
	}
}
