package pipeline

import (
	"sync"
	"time"

	"leadbook-backend/internal/lead/domain"
)

// RowState is the per-row UI state of one lead.
type RowState struct {
	Expanded          bool `json:"expanded"`
	CommentEditorOpen bool `json:"comment_editor_open"`
}

// View is a long-lived pipeline over the latest lead snapshot. Every change to
// the view parameters except the page number sends the view back to page 1.
type View struct {
	mu     sync.Mutex
	leads  []domain.Lead
	params Params
	rows   map[string]RowState
	now    func() time.Time
}

// NewView creates a view with the default parameters.
func NewView(now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	return &View{
		params: DefaultParams(),
		rows:   make(map[string]RowState),
		now:    now,
	}
}

// SetLeads replaces the lead set wholesale. Row state of leads that disappeared is dropped.
func (v *View) SetLeads(leads []domain.Lead) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.leads = leads
	present := make(map[string]bool, len(leads))
	for _, l := range leads {
		present[l.ID] = true
	}
	for id := range v.rows {
		if !present[id] {
			delete(v.rows, id)
		}
	}
}

func (v *View) Params() Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// SetParams applies p, resetting to page 1 unless only the page changed.
func (v *View) SetParams(p Params) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.update(p, p.Page)
}

func (v *View) SetTab(tab string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.params
	p.Tab = tab
	v.update(p, v.params.Page)
}

func (v *View) SetFilters(f Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.params
	p.Filters = f
	v.update(p, v.params.Page)
}

func (v *View) SetSearch(search string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.params
	p.Search = search
	v.update(p, v.params.Page)
}

// ToggleSort flips the order when key is already active, otherwise sorts by key descending.
func (v *View) ToggleSort(key SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p := v.params
	if p.Sort == key {
		if p.Order == Asc {
			p.Order = Desc
		} else {
			p.Order = Asc
		}
	} else {
		p.Sort = key
		p.Order = Desc
	}
	v.update(p, v.params.Page)
}

func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params.Page = page
}

// NextPage advances unless already on the last page.
func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	r := Run(v.leads, v.params, v.now())
	if r.Page < r.TotalPages {
		v.params.Page = r.Page + 1
	}
}

// PrevPage steps back unless already on the first page.
func (v *View) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.params.Page > 1 {
		v.params.Page--
	}
}

// Result recomputes the current page from the latest leads and parameters.
func (v *View) Result() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Run(v.leads, v.params, v.now())
}

// ToggleExpanded opens or closes the detail panel of a row.
func (v *View) ToggleExpanded(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.rows[id]
	s.Expanded = !s.Expanded
	v.setRow(id, s)
}

// OpenCommentEditor opens the comment editor on id and closes it everywhere else.
func (v *View) OpenCommentEditor(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for other, s := range v.rows {
		if other != id && s.CommentEditorOpen {
			s.CommentEditorOpen = false
			v.setRow(other, s)
		}
	}
	s := v.rows[id]
	s.CommentEditorOpen = true
	v.setRow(id, s)
}

func (v *View) CloseCommentEditor(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.rows[id]
	s.CommentEditorOpen = false
	v.setRow(id, s)
}

func (v *View) RowState(id string) RowState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rows[id]
}

func (v *View) update(p Params, page int) {
	if !sameView(v.params, p) {
		page = 1
	}
	p.Page = page
	v.params = p
}

func (v *View) setRow(id string, s RowState) {
	if s == (RowState{}) {
		delete(v.rows, id)
		return
	}
	v.rows[id] = s
}
