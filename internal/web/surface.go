package web

import "strings"

// pageSurface collects one interaction's output so it can be shipped back
// to the page as a single HTML fragment. Loading transitions are recorded
// but have no page-side effect; the browser manages its own button state.
type pageSurface struct {
	fragments  []string
	loadingLog []bool
}

func (s *pageSurface) RenderOutput(html string) {
	s.fragments = []string{html}
}

func (s *pageSurface) AppendOutput(html string) {
	s.fragments = append(s.fragments, html)
}

func (s *pageSurface) SetLoading(active bool, label string) {
	s.loadingLog = append(s.loadingLog, active)
}

func (s *pageSurface) HTML() string {
	return strings.Join(s.fragments, "\n")
}
