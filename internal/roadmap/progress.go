package roadmap

import "math"

type topicState struct {
	checked  bool
	expanded bool
}

// Progress tracks which topics of a roadmap the user has checked off and
// which are expanded in the checklist view.
type Progress struct {
	order  []string
	states map[string]*topicState
}

func NewProgress(doc *Document) *Progress {
	p := &Progress{states: make(map[string]*topicState, len(doc.Topics))}
	for _, topic := range doc.Topics {
		if _, ok := p.states[topic.Title]; ok {
			continue
		}
		p.order = append(p.order, topic.Title)
		p.states[topic.Title] = &topicState{}
	}
	return p
}

// ToggleItem flips a topic's checked state and returns the new state.
// Unknown titles are ignored and report false.
func (p *Progress) ToggleItem(title string) bool {
	st, ok := p.states[title]
	if !ok {
		return false
	}
	st.checked = !st.checked
	return st.checked
}

// ToggleExpand flips a topic's expanded state and returns the new state.
func (p *Progress) ToggleExpand(title string) bool {
	st, ok := p.states[title]
	if !ok {
		return false
	}
	st.expanded = !st.expanded
	return st.expanded
}

func (p *Progress) Checked(title string) bool {
	st, ok := p.states[title]
	return ok && st.checked
}

func (p *Progress) Expanded(title string) bool {
	st, ok := p.states[title]
	return ok && st.expanded
}

// Percent is the completion percentage, rounded to the nearest integer.
// An empty roadmap is 0% complete.
func (p *Progress) Percent() int {
	if len(p.order) == 0 {
		return 0
	}
	checked := 0
	for _, title := range p.order {
		if p.states[title].checked {
			checked++
		}
	}
	return int(math.Round(100 * float64(checked) / float64(len(p.order))))
}
