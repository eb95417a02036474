package element

// Kind identifies an element variant by its wire tag.
type Kind int

const (
	KindUnknown Kind = iota
	KindVStack
	KindHStack
	KindZStack
	KindGrid
	KindContainer
	KindText
	KindImage
	KindProgress
	KindGauge
	KindButton
	KindToggle
	KindDivider
	KindSpacer
	KindDate
	KindChart
	KindList
	KindLink
	KindShape
	KindTimer
	KindLabel
	KindCanvas
)

var kindTags = [...]string{
	KindUnknown:   "unknown",
	KindVStack:    "vstack",
	KindHStack:    "hstack",
	KindZStack:    "zstack",
	KindGrid:      "grid",
	KindContainer: "container",
	KindText:      "text",
	KindImage:     "image",
	KindProgress:  "progress",
	KindGauge:     "gauge",
	KindButton:    "button",
	KindToggle:    "toggle",
	KindDivider:   "divider",
	KindSpacer:    "spacer",
	KindDate:      "date",
	KindChart:     "chart",
	KindList:      "list",
	KindLink:      "link",
	KindShape:     "shape",
	KindTimer:     "timer",
	KindLabel:     "label",
	KindCanvas:    "canvas",
}

// String returns the wire tag.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return "unknown"
	}
	return kindTags[k]
}

// ParseKind maps a wire tag to its Kind. Unrecognized tags map to KindUnknown.
func ParseKind(tag string) Kind {
	for k, t := range kindTags {
		if Kind(k) != KindUnknown && t == tag {
			return Kind(k)
		}
	}
	return KindUnknown
}

// IsContainer reports whether elements of this kind carry children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindVStack, KindHStack, KindZStack, KindGrid, KindContainer, KindLink:
		return true
	default:
		return false
	}
}
