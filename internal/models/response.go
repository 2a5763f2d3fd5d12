package models

// Candidate represents a single reply candidate from Gemini
type Candidate struct {
	RCID     string
	Text     string
	Thoughts string // Only populated for thinking models
}

// ModelOutput represents one parsed reply from Gemini. During streaming each
// wire chunk parses into a ModelOutput whose candidate text is the cumulative
// text so far; the final chunk carries the complete reply and the metadata
// used to continue the conversation.
type ModelOutput struct {
	Metadata   []string // [cid, rid, rcid]
	Candidates []Candidate
	Chosen     int // Index of selected candidate
}

// Text returns the chosen candidate's text
func (m *ModelOutput) Text() string {
	if len(m.Candidates) == 0 {
		return ""
	}
	if m.Chosen >= len(m.Candidates) {
		return m.Candidates[0].Text
	}
	return m.Candidates[m.Chosen].Text
}

// Thoughts returns the chosen candidate's thoughts
func (m *ModelOutput) Thoughts() string {
	if len(m.Candidates) == 0 {
		return ""
	}
	if m.Chosen >= len(m.Candidates) {
		return m.Candidates[0].Thoughts
	}
	return m.Candidates[m.Chosen].Thoughts
}

// RCID returns the chosen candidate's RCID
func (m *ModelOutput) RCID() string {
	if len(m.Candidates) == 0 {
		return ""
	}
	if m.Chosen >= len(m.Candidates) {
		return m.Candidates[0].RCID
	}
	return m.Candidates[m.Chosen].RCID
}
