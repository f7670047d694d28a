package userlist

// PagerState is the visible position of the pager.
type PagerState struct {
	PageSize  int
	PageIndex int
	Length    int
}

// NumberOfPages returns how many pages Length spans, at least one.
func (s PagerState) NumberOfPages() int {
	if s.PageSize <= 0 {
		return 0
	}
	n := (s.Length + s.PageSize - 1) / s.PageSize
	return max(n, 1)
}

// HasPreviousPage reports whether the pager can move back.
func (s PagerState) HasPreviousPage() bool {
	return s.PageIndex >= 1 && s.PageSize != 0
}

// HasNextPage reports whether the pager can move forward.
func (s PagerState) HasNextPage() bool {
	return s.PageSize != 0 && s.PageIndex < s.NumberOfPages()-1
}

// Pager tracks page size and index and produces an event for every move.
// Moves that cannot happen, like going back from the first page, return false.
// Pager is not safe for concurrent use.
type Pager struct {
	state PagerState
}

// NewPager returns a pager on the first page.
func NewPager(pageSize int) *Pager {
	return &Pager{state: PagerState{PageSize: pageSize}}
}

// State returns the current position.
func (p *Pager) State() PagerState {
	return p.state
}

// SetLength updates the total number of items.
func (p *Pager) SetLength(length int) {
	p.state.Length = max(length, 0)
}

// Apply moves the pager to the position described by ev without emitting.
func (p *Pager) Apply(ev PageEvent) {
	p.state.PageSize = ev.PageSize
	p.state.PageIndex = ev.PageIndex
}

func (p *Pager) NextPage() (PageEvent, bool) {
	if !p.state.HasNextPage() {
		return PageEvent{}, false
	}
	return p.moveTo(p.state.PageIndex + 1), true
}

func (p *Pager) PreviousPage() (PageEvent, bool) {
	if !p.state.HasPreviousPage() {
		return PageEvent{}, false
	}
	return p.moveTo(p.state.PageIndex - 1), true
}

func (p *Pager) FirstPage() (PageEvent, bool) {
	if !p.state.HasPreviousPage() {
		return PageEvent{}, false
	}
	return p.moveTo(0), true
}

func (p *Pager) LastPage() (PageEvent, bool) {
	if !p.state.HasNextPage() {
		return PageEvent{}, false
	}
	return p.moveTo(p.state.NumberOfPages() - 1), true
}

// GoTo jumps to index. Indexes past the last known page are allowed.
func (p *Pager) GoTo(index int) (PageEvent, bool) {
	if index < 0 || index == p.state.PageIndex {
		return PageEvent{}, false
	}
	return p.moveTo(index), true
}

// SetPageSize changes the page size keeping the first visible item on screen.
func (p *Pager) SetPageSize(size int) (PageEvent, bool) {
	if size <= 0 {
		return PageEvent{}, false
	}
	first := p.state.PageIndex * p.state.PageSize
	prev := p.state.PageIndex
	p.state.PageSize = size
	p.state.PageIndex = first / size
	return PageEvent{PageSize: size, PageIndex: p.state.PageIndex, PreviousPageIndex: prev}, true
}

func (p *Pager) moveTo(index int) PageEvent {
	prev := p.state.PageIndex
	p.state.PageIndex = index
	return PageEvent{PageSize: p.state.PageSize, PageIndex: index, PreviousPageIndex: prev}
}
