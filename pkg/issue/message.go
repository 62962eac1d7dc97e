package issue

// RunningAnnexesMessage is the issue message listing annexed publications.
// ExtraLinks holds publication ids added by hand on top of the running
// annexes, in display order.
type RunningAnnexesMessage struct {
	ExtraLinks []string `json:"extra_links" yaml:"extra_links"`
}

// InsertAt places id at position idx, clamping idx into range.
func (m *RunningAnnexesMessage) InsertAt(idx int, id string) {
	if id == "" {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.ExtraLinks) {
		idx = len(m.ExtraLinks)
	}
	links := make([]string, 0, len(m.ExtraLinks)+1)
	links = append(links, m.ExtraLinks[:idx]...)
	links = append(links, id)
	links = append(links, m.ExtraLinks[idx:]...)
	m.ExtraLinks = links
}

// Remove drops every occurrence of id.
func (m *RunningAnnexesMessage) Remove(id string) {
	links := m.ExtraLinks[:0:0]
	for _, l := range m.ExtraLinks {
		if l != id {
			links = append(links, l)
		}
	}
	m.ExtraLinks = links
}

// Move reorders a link from one position to another.
func (m *RunningAnnexesMessage) Move(from, to int) {
	n := len(m.ExtraLinks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	id := m.ExtraLinks[from]
	rest := make([]string, 0, n-1)
	rest = append(rest, m.ExtraLinks[:from]...)
	rest = append(rest, m.ExtraLinks[from+1:]...)
	m.ExtraLinks = rest
	m.InsertAt(to, id)
}
