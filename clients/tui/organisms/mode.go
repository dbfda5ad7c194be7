package organisms

// Mode represents the current interaction state.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch      // typing in the search box
	ModeForm        // add/edit modal open
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeForm:
		return "form"
	default:
		return "browse"
	}
}
