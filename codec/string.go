package codec

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

// Decode reads the string stored in slot, the full octet range of the field.
func (s *StringContract) Decode(slot []byte) string {
	payload := slot[s.PayloadOffset : s.PayloadOffset+s.MaxOctets]
	switch s.Encoding {
	case schema.EncodingUTF8:
		n := binary.BigEndian.Uint32(slot)
		if n > s.MaxOctets {
			n = s.MaxOctets
		}
		return string(payload[:n])
	default:
		if i := bytes.IndexByte(payload, 0); i >= 0 {
			return string(payload[:i])
		}
		return string(payload)
	}
}

// Encode stores v in slot. Unused payload octets and the terminator slot are
// zeroed. Under TruncateReject an oversized v fails before anything is
// written.
func (s *StringContract) Encode(slot []byte, v string) error {
	if uint32(len(v)) > s.MaxOctets {
		if s.Policy == TruncateReject {
			return errors.New(errors.PhaseAccess, errors.KindStringTooLong).
				Value(len(v)).
				Detail("%d octets exceed capacity %d", len(v), s.MaxOctets).
				Build()
		}
		v = s.truncate(v)
	}

	payload := slot[s.PayloadOffset : s.PayloadOffset+s.MaxOctets]
	n := copy(payload, v)
	clear(payload[n:])

	if s.Encoding == schema.EncodingUTF8 {
		binary.BigEndian.PutUint32(slot, uint32(n))
		clear(slot[s.PayloadOffset+s.MaxOctets:])
	}
	return nil
}

func (s *StringContract) truncate(v string) string {
	v = v[:s.MaxOctets]
	if s.Encoding != schema.EncodingUTF8 {
		return v
	}
	// Drop a rune split by the cut.
	for len(v) > 0 {
		r, size := utf8.DecodeLastRuneInString(v)
		if r != utf8.RuneError || size > 1 {
			break
		}
		v = v[:len(v)-1]
	}
	return v
}
