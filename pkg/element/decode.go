package element

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// UnmarshalJSON decodes each child independently. A null child is kept as
// a nil hole so grids can leave its cell blank.
func (es *Elements) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("children: %w", err)
	}
	out := make(Elements, len(raws))
	for i, raw := range raws {
		out[i] = Decode(raw)
	}
	*es = out
	return nil
}

// Decode decodes one node. It never fails: a node that cannot be decoded
// becomes an *Unknown carrying its type name and the decode error, and a
// JSON null yields nil.
func Decode(raw json.RawMessage) Element {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return &Unknown{Err: err}
	}
	e := newElement(ParseKind(head.Type))
	if e == nil {
		log.Debug().Str("type", head.Type).Msg("unknown element type")
		u := &Unknown{TypeName: head.Type}
		// Style still applies to the fallback leaf.
		_ = json.Unmarshal(raw, &u.Style)
		return u
	}
	if err := json.Unmarshal(raw, e); err != nil {
		log.Debug().Str("type", head.Type).Err(err).Msg("element decode failed")
		return &Unknown{TypeName: head.Type, Err: err}
	}
	return e
}

func newElement(k Kind) Element {
	switch k {
	case KindVStack:
		return &VStack{}
	case KindHStack:
		return &HStack{}
	case KindZStack:
		return &ZStack{}
	case KindGrid:
		return &Grid{}
	case KindContainer:
		return &Container{}
	case KindText:
		return &Text{}
	case KindImage:
		return &Image{}
	case KindProgress:
		return &Progress{}
	case KindGauge:
		return &Gauge{}
	case KindButton:
		return &Button{}
	case KindToggle:
		return &Toggle{}
	case KindDivider:
		return &Divider{}
	case KindSpacer:
		return &Spacer{}
	case KindDate:
		return &Date{}
	case KindChart:
		return &Chart{}
	case KindList:
		return &List{}
	case KindLink:
		return &Link{}
	case KindShape:
		return &Shape{}
	case KindTimer:
		return &Timer{}
	case KindLabel:
		return &Label{}
	case KindCanvas:
		return &Canvas{}
	default:
		return nil
	}
}
