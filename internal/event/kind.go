package event

// Kind discriminates events.
type Kind string

const (
	KindMouse     Kind = "MOUSE"
	KindKeypress  Kind = "KEYPRESS"
	KindTimer     Kind = "TIMER"
	KindTerminate Kind = "TERMINATE"
	KindNamed     Kind = "NAMED"
)

// InputKinds lists the kinds a Source can generate, in weight-table order.
var InputKinds = []Kind{KindMouse, KindKeypress, KindTimer, KindTerminate}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMouse, KindKeypress, KindTimer, KindTerminate, KindNamed:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
