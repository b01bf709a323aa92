package service

// PageAction is one window of a paginated listing.
type PageAction struct {
	Offset int
	Label  int
	Active bool
	URL    string
}

// Pagination describes the windows over a listing and the neighbours of
// the active one.
type Pagination struct {
	Previous *PageAction
	Next     *PageAction
	Actions  []PageAction
}

// PageURLFunc builds the URL of the window starting at windowStart.
type PageURLFunc func(windowStart, total, size, offset int) string

// BuildPagination partitions [0, total) into windows of size. The window
// containing offset is active; Previous and Next point at its neighbours
// and are nil at the edges or when no window is active. A non-positive
// size yields no windows.
func BuildPagination(urlFor PageURLFunc, total, size, offset int) Pagination {
	var p Pagination
	if size <= 0 {
		return p
	}

	active := -1
	for start, index := 0, 0; start < total; start, index = start+size, index+1 {
		action := PageAction{
			Offset: start,
			Label:  index + 1,
			Active: offset >= start && offset < start+size,
		}
		if urlFor != nil {
			action.URL = urlFor(start, total, size, offset)
		}
		if action.Active {
			active = index
		}
		p.Actions = append(p.Actions, action)
	}

	if active > 0 {
		prev := p.Actions[active-1]
		p.Previous = &prev
	}
	if active > -1 && active+1 < len(p.Actions) {
		next := p.Actions[active+1]
		p.Next = &next
	}
	return p
}
