package leveling

// VoiceState is the part of a member's voice state that decides whether
// they earn voice experience. An empty ChannelID means not connected.
type VoiceState struct {
	ChannelID string
	Muted     bool
	Deafened  bool
}

// Active reports whether the member is connected and neither muted nor
// deafened.
func (v VoiceState) Active() bool {
	return v.ChannelID != "" && !v.Muted && !v.Deafened
}

// VoiceTransition is what a voice state change means for experience.
type VoiceTransition int

const (
	VoiceNone VoiceTransition = iota
	VoiceJoin
	VoiceLeave
)

func (t VoiceTransition) String() string {
	switch t {
	case VoiceJoin:
		return "join"
	case VoiceLeave:
		return "leave"
	default:
		return "none"
	}
}

// ClassifyVoiceTransition compares the states before and after an update.
// Connecting, unmuting or undeafening starts a session; disconnecting,
// muting or deafening ends it. Moving between channels while active is
// neither.
func ClassifyVoiceTransition(before, after VoiceState) VoiceTransition {
	switch {
	case !before.Active() && after.Active():
		return VoiceJoin
	case before.Active() && !after.Active():
		return VoiceLeave
	default:
		return VoiceNone
	}
}
