package interview

// ScriptLine is one scripted utterance for the simulated agent.
type ScriptLine struct {
	Speaker Speaker
	Text    string
}

// DefaultScript returns the scripted interview used when no live vendor
// session exists. The assistant opens, speakers alternate, and the
// assistant closes; tests that watch transcript growth rely on that
// shape rather than the exact wording.
func DefaultScript() []ScriptLine {
	return []ScriptLine{
		{SpeakerAssistant, "Hi, thanks for making the time today. Could you start by telling me a little about your role?"},
		{SpeakerParticipant, "Sure. I'm a product designer at a mid-size fintech company, mostly working on onboarding flows."},
		{SpeakerAssistant, "Great. Walk me through the last time you ran usability research on one of those flows."},
		{SpeakerParticipant, "We recruited eight participants and ran moderated sessions over two weeks. Scheduling was honestly the hardest part."},
		{SpeakerAssistant, "What made scheduling hard, specifically?"},
		{SpeakerParticipant, "Time zones, mostly. And half the no-shows never rescheduled, so we lost those slots entirely."},
		{SpeakerAssistant, "If you could change one thing about that process, what would it be?"},
		{SpeakerParticipant, "Letting participants self-serve a session whenever they're free, without a human moderator in the loop."},
		{SpeakerAssistant, "That's really helpful context. Those are all my questions. Thanks again for your time."},
	}
}
