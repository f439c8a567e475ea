package engine

// State is the orchestrator's per-session mutable state.
// It owns the replayed message history, the turn counter and the
// "last non-empty text" pointer used as the session's final answer.
type State struct {
	History  []ChatMessage // Conversation history replayed into each call
	Turn     int           // Turns taken so far (increments after each model round trip)
	Done     bool          // True when a turn produced no tool calls
	Model    string        // Model identifier, updated from each response
	MaxTurns int           // Hard turn ceiling; reaching it is graceful, not an error
	Totals   Usage         // Accumulated token usage across all turns

	// AgentResponse holds the latest non-empty assistant text seen across
	// the whole session. It is overwritten every time non-empty text
	// appears, including on turns that also issue tool calls, so the last
	// one wins.
	AgentResponse string
}

func (s *State) Append(msg ChatMessage) { s.History = append(s.History, msg) }

// RecordText updates AgentResponse if text is non-empty.
func (s *State) RecordText(text string) {
	if text != "" {
		s.AgentResponse = text
	}
}
