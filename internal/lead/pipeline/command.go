package pipeline

import (
	"errors"
	"fmt"

	"leadbook-backend/internal/lead/domain"
)

// Command actions accepted by View.Apply.
const (
	ActionSetTab             = "set_tab"
	ActionSetFilters         = "set_filters"
	ActionSetSearch          = "set_search"
	ActionToggleSort         = "toggle_sort"
	ActionSetPage            = "set_page"
	ActionNextPage           = "next_page"
	ActionPrevPage           = "prev_page"
	ActionToggleExpanded     = "toggle_expanded"
	ActionOpenCommentEditor  = "open_comment_editor"
	ActionCloseCommentEditor = "close_comment_editor"
)

// ErrUnknownAction is returned by Apply for an unrecognized action.
var ErrUnknownAction = errors.New("unknown view action")

// Command is one UI interaction on a live view. Only the fields the action needs are read.
type Command struct {
	Action  string  `json:"action" binding:"required"`
	Tab     string  `json:"tab,omitempty"`
	Filters Filters `json:"filters"`
	Search  string  `json:"search,omitempty"`
	Sort    SortKey `json:"sort,omitempty"`
	Page    int     `json:"page,omitempty"`
	LeadID  string  `json:"lead_id,omitempty"`
}

// Frame is what a live view emits: the current page plus the per-row UI state.
type Frame struct {
	Result
	RowStates map[string]RowState `json:"row_states"`
}

// Apply performs cmd on the view.
func (v *View) Apply(cmd Command) error {
	switch cmd.Action {
	case ActionSetTab:
		if cmd.Tab != TabAll && cmd.Tab != TabActive && !domain.Status(cmd.Tab).Valid() {
			return fmt.Errorf("%w: tab %q", ErrUnknownAction, cmd.Tab)
		}
		v.SetTab(cmd.Tab)
	case ActionSetFilters:
		f := cmd.Filters
		f.Account = orAny(f.Account)
		f.QueryType = orAny(f.QueryType)
		f.Priority = orAny(f.Priority)
		f.DateRange = orAny(f.DateRange)
		v.SetFilters(f)
	case ActionSetSearch:
		v.SetSearch(cmd.Search)
	case ActionToggleSort:
		if !cmd.Sort.Valid() {
			return fmt.Errorf("%w: sort %q", ErrUnknownAction, cmd.Sort)
		}
		v.ToggleSort(cmd.Sort)
	case ActionSetPage:
		if cmd.Page < 1 {
			return fmt.Errorf("%w: page %d", ErrUnknownAction, cmd.Page)
		}
		v.SetPage(cmd.Page)
	case ActionNextPage:
		v.NextPage()
	case ActionPrevPage:
		v.PrevPage()
	case ActionToggleExpanded, ActionOpenCommentEditor, ActionCloseCommentEditor:
		if cmd.LeadID == "" {
			return fmt.Errorf("%w: lead_id required", ErrUnknownAction)
		}
		switch cmd.Action {
		case ActionToggleExpanded:
			v.ToggleExpanded(cmd.LeadID)
		case ActionOpenCommentEditor:
			v.OpenCommentEditor(cmd.LeadID)
		default:
			v.CloseCommentEditor(cmd.LeadID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return nil
}

// Frame recomputes the current page and copies the row state.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()

	rows := make(map[string]RowState, len(v.rows))
	for id, s := range v.rows {
		rows[id] = s
	}
	return Frame{Result: Run(v.leads, v.params, v.now()), RowStates: rows}
}
