// Package appstate holds the view state of one complaint-portal client and
// the pure function that moves it between views.
package appstate

// Views a client can be on.
const (
	ViewHome   = "home"
	ViewReport = "report"
	ViewList   = "view"
)

// Supported interface languages.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
	LangKannada = "kn"
)

// Action types accepted by Transition.
const (
	ActionSelectWard         = "select_ward"
	ActionNavigate           = "navigate"
	ActionSetLanguage        = "set_language"
	ActionComplaintSubmitted = "complaint_submitted"
	ActionShowComplaints     = "show_complaints"
)

// State is the view state of a single client. It is a value; Transition
// returns a new State and never changes the one it was given.
type State struct {
	View           string `json:"view"`
	SelectedWardID string `json:"selected_ward_id,omitempty"`
	// RefreshCount changes whenever the complaint list must be re-queried.
	RefreshCount int    `json:"refresh_count"`
	Language     string `json:"language"`
}

// Action is a request to change the state. Value carries the ward ID for
// select_ward, the view for navigate and the language for set_language.
type Action struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Initial returns the state of a freshly connected client.
func Initial() State {
	return State{View: ViewHome, Language: LangEnglish}
}

// Transition applies a to s. Unknown actions and invalid values leave the
// state unchanged.
func Transition(s State, a Action) State {
	switch a.Type {
	case ActionSelectWard:
		s.SelectedWardID = a.Value
	case ActionNavigate:
		switch a.Value {
		case ViewHome, ViewList:
			s.View = a.Value
		case ViewReport:
			// A complaint is always filed against a ward.
			if s.SelectedWardID != "" {
				s.View = ViewReport
			}
		}
	case ActionSetLanguage:
		if IsLanguage(a.Value) {
			s.Language = a.Value
		}
	case ActionComplaintSubmitted:
		s.RefreshCount++
	case ActionShowComplaints:
		s.View = ViewList
	}
	return s
}

// IsLanguage reports whether lang is a supported interface language.
func IsLanguage(lang string) bool {
	switch lang {
	case LangEnglish, LangHindi, LangKannada:
		return true
	}
	return false
}
