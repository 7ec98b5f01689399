package core

// State is the single mutable record threaded through every stage of one
// planning run. It is owned by exactly one run at a time and is not safe for
// concurrent mutation.
//
// Contract:
//   - Messages is append-only; Apply is the only path that grows it
//   - Scalars, maps and the profile are replaced wholesale by Apply
//   - Itinerary is opaque to the orchestration layer apart from HasItinerary
//   - ToolPasses counts tool batches of the whole run, LoopPasses those of
//     the current research round

type State struct {
	Messages          []Message       `json:"messages"`
	IsValid           bool            `json:"is_valid"`
	UserProfile       TravelerProfile `json:"user_profile"`
	ProfileSet        bool            `json:"profile_set"`
	OptimizedPrompt   string          `json:"optimized_prompt"`
	Itinerary         map[string]any  `json:"itinerary"`
	ItineraryFeedback string          `json:"itinerary_feedback"`
	IterationCounter  int             `json:"iteration_counter"`
	ToolPasses        int             `json:"tool_passes"`
	LoopPasses        int             `json:"loop_passes"`
	ResearchPasses    int             `json:"research_passes"`
}

// NewState seeds a state with the initial conversation and the default
// traveler profile. All other fields start at their zero values.
func NewState(messages ...Message) *State {
	s := &State{
		Messages:    make([]Message, 0, len(messages)),
		UserProfile: DefaultProfile(),
		Itinerary:   map[string]any{},
	}
	s.Messages = append(s.Messages, messages...)
	return s
}

// Update is a partial state change produced by a stage. Nil / empty fields
// are left untouched by Apply, so the zero Update is a no-op.
type Update struct {
	Messages          []Message
	IsValid           *bool
	UserProfile       *TravelerProfile
	OptimizedPrompt   *string
	Itinerary         map[string]any
	ItineraryFeedback *string
	IterationCounter  *int
	ToolPasses        *int
	LoopPasses        *int
	ResearchPasses    *int
}

// IsZero reports whether applying the update would change nothing.
func (u Update) IsZero() bool {
	return len(u.Messages) == 0 &&
		u.IsValid == nil &&
		u.UserProfile == nil &&
		u.OptimizedPrompt == nil &&
		u.Itinerary == nil &&
		u.ItineraryFeedback == nil &&
		u.IterationCounter == nil &&
		u.ToolPasses == nil &&
		u.LoopPasses == nil &&
		u.ResearchPasses == nil
}

// Apply merges a partial update into the state: sequences are appended,
// scalars and maps replaced wholesale.
func (s *State) Apply(u Update) {
	if len(u.Messages) > 0 {
		s.Messages = append(s.Messages, u.Messages...)
	}
	if u.IsValid != nil {
		s.IsValid = *u.IsValid
	}
	if u.UserProfile != nil {
		s.UserProfile = u.UserProfile.Clone()
		s.ProfileSet = true
	}
	if u.OptimizedPrompt != nil {
		s.OptimizedPrompt = *u.OptimizedPrompt
	}
	if u.Itinerary != nil {
		s.Itinerary = u.Itinerary
	}
	if u.ItineraryFeedback != nil {
		s.ItineraryFeedback = *u.ItineraryFeedback
	}
	if u.IterationCounter != nil {
		s.IterationCounter = *u.IterationCounter
	}
	if u.ToolPasses != nil {
		s.ToolPasses = *u.ToolPasses
	}
	if u.LoopPasses != nil {
		s.LoopPasses = *u.LoopPasses
	}
	if u.ResearchPasses != nil {
		s.ResearchPasses = *u.ResearchPasses
	}
}

// LastMessage returns the most recently appended message.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// UserMessages returns only the user-authored messages preserving order.
func (s *State) UserMessages() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Role() == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// HasItinerary reports whether research produced any deliverable content.
func (s *State) HasItinerary() bool { return len(s.Itinerary) > 0 }

// Clone returns a copy safe for independent mutation. Message parts are
// shared since messages are immutable once appended.
func (s *State) Clone() *State {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	c.UserProfile = s.UserProfile.Clone()
	if s.Itinerary != nil {
		c.Itinerary = make(map[string]any, len(s.Itinerary))
		for k, v := range s.Itinerary {
			c.Itinerary[k] = v
		}
	}
	return &c
}

// Ptr returns a pointer to v. Handy for populating Update fields.
func Ptr[T any](v T) *T { return &v }
