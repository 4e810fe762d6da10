package reader

// Command is one event of the abstract input stream the session consumes.
// Mapping raw key codes to commands is the shell's job; the session never
// sees terminal input directly.
type Command interface{ isCommand() }

// Scroll moves the reading position by N lines, clamped at chapter bounds.
// Inside an overlay it moves the overlay cursor instead.
type Scroll struct{ Lines int }

// Page moves by whole pages (±1 per step).
type Page struct{ Delta int }

// ChapterStep switches chapters (±1 per step), clamped at the spine ends.
type ChapterStep struct{ Delta int }

// JumpStart and JumpEnd move to the first / last line of the chapter.
type (
	JumpStart struct{}
	JumpEnd   struct{}
)

// OpenContents and OpenSearch raise the respective overlays.
type (
	OpenContents struct{}
	OpenSearch   struct{}
)

// SearchInput mutates the query buffer while the search overlay is typing.
type SearchInput struct {
	Ch        rune
	Backspace bool
}

// SearchNext and SearchPrev move the result cursor (browsing sub-state).
type (
	SearchNext struct{}
	SearchPrev struct{}
)

// CommitSelection navigates to the overlay's selected target and returns
// to reading.
type CommitSelection struct{}

// Cancel returns to reading, discarding overlay-local state.
type Cancel struct{}

// Resize announces a new viewport; the session re-layouts synchronously.
type Resize struct{ Width, Height int }

// Quit terminates the session.
type Quit struct{}

func (Scroll) isCommand()          {}
func (Page) isCommand()            {}
func (ChapterStep) isCommand()     {}
func (JumpStart) isCommand()       {}
func (JumpEnd) isCommand()         {}
func (OpenContents) isCommand()    {}
func (OpenSearch) isCommand()      {}
func (SearchInput) isCommand()     {}
func (SearchNext) isCommand()      {}
func (SearchPrev) isCommand()      {}
func (CommitSelection) isCommand() {}
func (Cancel) isCommand()          {}
func (Resize) isCommand()          {}
func (Quit) isCommand()            {}
