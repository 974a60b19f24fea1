package book

import (
	"slices"
	"strings"
)

// MaxGridDimension bounds rows and columns of a single page grid.
const MaxGridDimension = 20

// Action is an author action. Actions are applied through Reduce.
type Action interface {
	// apply returns the next state. It receives a private clone it may modify,
	// and reports false when the action does not apply, in which case the
	// original state is kept.
	apply(s *State) bool
}

// Reduce applies an action and returns the next state. It is total: an action
// that does not apply returns s unchanged, and s itself is never modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	next := s.clone()
	if !a.apply(&next) {
		return s
	}
	return next
}

// ReduceAll applies actions in order.
func ReduceAll(s State, actions ...Action) State {
	for _, a := range actions {
		s = Reduce(s, a)
	}
	return s
}

// --- Pages and cells ---

// ConfirmPages creates Count pages of a 1x1 blank grid, discarding every
// cell assignment, preview and fit mode, and resets the table of contents.
// Social links and button pages are kept; references to pages that no longer
// exist stay inert.
type ConfirmPages struct {
	Count int
}

func (a ConfirmPages) apply(s *State) bool {
	if a.Count < 1 || a.Count > maxNumericInput {
		return false
	}
	s.PageCount = a.Count
	s.Pages = make([]Page, a.Count)
	for i := range s.Pages {
		s.Pages[i] = newPage()
	}
	s.Previews = make(map[CellKey]Preview)
	s.TOC = TOC{Entries: []TOCEntry{{}}}
	return true
}

// SetGridShape resizes a page grid. Rows and columns below 1 clamp to 1.
// Cells keep their position up to the smaller of the old and new counts.
type SetGridShape struct {
	Page int
	Rows int
	Cols int
}

func (a SetGridShape) apply(s *State) bool {
	if a.Page < 0 || a.Page >= len(s.Pages) {
		return false
	}
	rows := clampGrid(a.Rows)
	cols := clampGrid(a.Cols)
	p := s.Pages[a.Page]
	total := rows * cols

	cells := make([]Cell, total)
	n := copy(cells, p.Cells)
	for i := n; i < total; i++ {
		cells[i] = Cell{Fit: FitContain}
	}
	for i := total; i < len(p.Cells); i++ {
		delete(s.Previews, CellKey{Page: a.Page, Cell: i})
	}
	s.Pages[a.Page] = Page{Rows: rows, Cols: cols, Cells: cells}
	return true
}

func clampGrid(v int) int {
	return min(max(v, 1), MaxGridDimension)
}

// AssignFile stores a file in a cell. Assigning a PDF opens a pending preview
// entry with a fresh generation; any other file drops the cell's preview.
type AssignFile struct {
	Page int
	Cell int
	File FileRef
}

func (a AssignFile) apply(s *State) bool {
	key := CellKey{Page: a.Page, Cell: a.Cell}
	if _, ok := s.Cell(key); !ok {
		return false
	}
	file := a.File
	s.Pages[a.Page].Cells[a.Cell].File = &file
	if file.IsPDF() {
		s.seq++
		s.Previews[key] = Preview{Status: PreviewPending, Generation: s.seq}
	} else {
		delete(s.Previews, key)
	}
	return true
}

// ClearCell removes the file from a cell.
type ClearCell struct {
	Page int
	Cell int
}

func (a ClearCell) apply(s *State) bool {
	key := CellKey{Page: a.Page, Cell: a.Cell}
	c, ok := s.Cell(key)
	if !ok || c.File == nil {
		return false
	}
	s.Pages[a.Page].Cells[a.Cell].File = nil
	delete(s.Previews, key)
	return true
}

// SwapCells exchanges two cells of a page, including their fit modes and previews.
type SwapCells struct {
	Page int
	A    int
	B    int
}

func (a SwapCells) apply(s *State) bool {
	ka := CellKey{Page: a.Page, Cell: a.A}
	kb := CellKey{Page: a.Page, Cell: a.B}
	if _, ok := s.Cell(ka); !ok {
		return false
	}
	if _, ok := s.Cell(kb); !ok || a.A == a.B {
		return false
	}
	cells := s.Pages[a.Page].Cells
	cells[a.A], cells[a.B] = cells[a.B], cells[a.A]

	pa, hasA := s.Previews[ka]
	pb, hasB := s.Previews[kb]
	delete(s.Previews, ka)
	delete(s.Previews, kb)
	if hasA {
		s.Previews[kb] = pa
	}
	if hasB {
		s.Previews[ka] = pb
	}
	return true
}

// SetFitMode sets how a cell's image or preview is scaled.
type SetFitMode struct {
	Page int
	Cell int
	Fit  FitMode
}

func (a SetFitMode) apply(s *State) bool {
	if !a.Fit.Valid() {
		return false
	}
	if _, ok := s.Cell(CellKey{Page: a.Page, Cell: a.Cell}); !ok {
		return false
	}
	s.Pages[a.Page].Cells[a.Cell].Fit = a.Fit
	return true
}

// --- PDF previews ---

// PreviewRendered stores a rendered first-page preview. It only applies while
// the cell still holds the PDF of the same assignment generation.
type PreviewRendered struct {
	Key        CellKey
	Generation int
	DataURL    string
}

func (a PreviewRendered) apply(s *State) bool {
	if !s.previewCurrent(a.Key, a.Generation) || a.DataURL == "" {
		return false
	}
	s.Previews[a.Key] = Preview{Status: PreviewReady, DataURL: a.DataURL, Generation: a.Generation}
	return true
}

// PreviewFailedToRender records a decode failure so the cell shows a failed
// state instead of loading forever.
type PreviewFailedToRender struct {
	Key        CellKey
	Generation int
	Err        string
}

func (a PreviewFailedToRender) apply(s *State) bool {
	if !s.previewCurrent(a.Key, a.Generation) {
		return false
	}
	msg := a.Err
	if msg == "" {
		msg = "preview failed"
	}
	s.Previews[a.Key] = Preview{Status: PreviewFailed, Error: msg, Generation: a.Generation}
	return true
}

func (s *State) previewCurrent(key CellKey, generation int) bool {
	c, ok := s.Cell(key)
	if !ok || !c.File.IsPDF() {
		return false
	}
	p, ok := s.Previews[key]
	return ok && p.Generation == generation
}

// --- Table of contents ---

// SetTOCPage designates the page hosting the table of contents. 0 clears it.
type SetTOCPage struct {
	Page int
}

func (a SetTOCPage) apply(s *State) bool {
	if a.Page < 0 {
		return false
	}
	s.TOC.Page = a.Page
	return true
}

// SetTOCCount resizes the entry list. A count below 1 resets it to one empty entry.
type SetTOCCount struct {
	Count int
}

func (a SetTOCCount) apply(s *State) bool {
	if a.Count > maxNumericInput {
		return false
	}
	if a.Count < 1 {
		s.TOC.Entries = []TOCEntry{{}}
		return true
	}
	entries := s.TOC.Entries
	if len(entries) > a.Count {
		entries = entries[:a.Count]
	}
	for len(entries) < a.Count {
		entries = append(entries, TOCEntry{})
	}
	s.TOC.Entries = entries
	return true
}

// SetTOCEntry updates the content and/or target page of one entry.
// Nil fields are left as they are; a page of 0 clears the target.
type SetTOCEntry struct {
	Index   int
	Content *string
	Page    *int
}

func (a SetTOCEntry) apply(s *State) bool {
	if a.Index < 0 || a.Index >= len(s.TOC.Entries) {
		return false
	}
	if a.Content == nil && a.Page == nil {
		return false
	}
	if a.Page != nil && *a.Page < 0 {
		return false
	}
	e := s.TOC.Entries[a.Index]
	if a.Content != nil {
		e.Content = *a.Content
	}
	if a.Page != nil {
		e.Page = *a.Page
	}
	s.TOC.Entries[a.Index] = e
	return true
}

// --- Social links ---

// AddSocial adds a network that is not present yet. Its initial pages are all
// pages minus the excluded ones when "all pages" is on, otherwise the pages
// already assigned to any link.
type AddSocial struct {
	Name Network
}

func (a AddSocial) apply(s *State) bool {
	if a.Name.Icon() == "" || s.socialIndex(a.Name) >= 0 {
		return false
	}
	var pages []int
	if s.Socials.AllPages && s.PageCount > 0 {
		pages = s.allPagesExceptExcluded()
	} else {
		pages = s.enteredPages()
	}
	s.Socials.Links = append(s.Socials.Links, SocialLink{Name: a.Name, Pages: pages})
	return true
}

// RemoveSocial removes a network's link.
type RemoveSocial struct {
	Name Network
}

func (a RemoveSocial) apply(s *State) bool {
	i := s.socialIndex(a.Name)
	if i < 0 {
		return false
	}
	s.Socials.Links = slices.Delete(s.Socials.Links, i, i+1)
	return true
}

// SetSocialLink sets a network's URL, prefixing https:// when no scheme is given.
type SetSocialLink struct {
	Name Network
	Link string
}

func (a SetSocialLink) apply(s *State) bool {
	i := s.socialIndex(a.Name)
	if i < 0 {
		return false
	}
	s.Socials.Links[i].Link = NormalizeLink(a.Link)
	return true
}

// NormalizeLink trims a URL and prefixes https:// unless it already has an
// http or https scheme.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + link
}

// AddSocialPage assigns a page to every link and lifts its exclusion.
type AddSocialPage struct {
	Page int
}

func (a AddSocialPage) apply(s *State) bool {
	if a.Page < 1 || len(s.Socials.Links) == 0 {
		return false
	}
	delete(s.Socials.Excluded, a.Page)
	for i, l := range s.Socials.Links {
		if !l.OnPage(a.Page) {
			l.Pages = append(l.Pages, a.Page)
			slices.Sort(l.Pages)
			s.Socials.Links[i] = l
		}
	}
	return true
}

// RemoveSocialPage removes a page from every link and excludes it so that a
// later "all pages" does not add it back.
type RemoveSocialPage struct {
	Page int
}

func (a RemoveSocialPage) apply(s *State) bool {
	if a.Page < 1 {
		return false
	}
	s.Socials.Excluded[a.Page] = struct{}{}
	for i, l := range s.Socials.Links {
		l.Pages = slices.DeleteFunc(l.Pages, func(p int) bool { return p == a.Page })
		s.Socials.Links[i] = l
	}
	return true
}

// SetAllSocialPages toggles "all pages". Turning it on assigns every page
// except the excluded ones to every link; turning it off clears their pages.
type SetAllSocialPages struct {
	Enabled bool
}

func (a SetAllSocialPages) apply(s *State) bool {
	s.Socials.AllPages = a.Enabled
	if s.PageCount < 1 {
		return true
	}
	for i := range s.Socials.Links {
		if a.Enabled {
			s.Socials.Links[i].Pages = s.allPagesExceptExcluded()
		} else {
			s.Socials.Links[i].Pages = []int{}
		}
	}
	return true
}

func (s *State) socialIndex(name Network) int {
	return slices.IndexFunc(s.Socials.Links, func(l SocialLink) bool { return l.Name == name })
}

func (s *State) allPagesExceptExcluded() []int {
	pages := make([]int, 0, s.PageCount)
	for p := 1; p <= s.PageCount; p++ {
		if _, excluded := s.Socials.Excluded[p]; !excluded {
			pages = append(pages, p)
		}
	}
	return pages
}

func (s *State) enteredPages() []int {
	set := make(map[int]struct{})
	for _, l := range s.Socials.Links {
		for _, p := range l.Pages {
			set[p] = struct{}{}
		}
	}
	return sortedSet(set)
}

// --- Buttons ---

// AddButtonPage marks an existing page as rendering the action button.
type AddButtonPage struct {
	Page int
}

func (a AddButtonPage) apply(s *State) bool {
	if !s.ValidPage(a.Page) {
		return false
	}
	s.Buttons[a.Page] = struct{}{}
	return true
}

// RemoveButtonPage removes the action button from a page.
type RemoveButtonPage struct {
	Page int
}

func (a RemoveButtonPage) apply(s *State) bool {
	if _, ok := s.Buttons[a.Page]; !ok {
		return false
	}
	delete(s.Buttons, a.Page)
	return true
}
