package widget

type Mode string

const (
	ModeClosed        Mode = "closed"
	ModePeekVisible   Mode = "peek_visible"
	ModePeekDismissed Mode = "peek_dismissed"
	ModeInitial       Mode = "initial"
	ModeChat          Mode = "chat"
	ModeVoice         Mode = "voice"
)

// Modes lists every mode, for exhaustive checks.
var Modes = []Mode{ModeClosed, ModePeekVisible, ModePeekDismissed, ModeInitial, ModeChat, ModeVoice}

// Open reports whether the panel is showing.
func (m Mode) Open() bool {
	return m == ModeInitial || m == ModeChat || m == ModeVoice
}

// Trigger is a user or timer action that may change the mode.
type Trigger string

const (
	TriggerPeekTimer   Trigger = "peek_timer"
	TriggerDismissPeek Trigger = "dismiss_peek"
	TriggerOpen        Trigger = "open"
	TriggerChooseChat  Trigger = "choose_chat"
	TriggerChooseVoice Trigger = "choose_voice"
	TriggerChooseGift  Trigger = "choose_gift"
	TriggerInput       Trigger = "input"
	TriggerToggle      Trigger = "toggle"
	TriggerClose       Trigger = "close"
)

var Triggers = []Trigger{
	TriggerPeekTimer, TriggerDismissPeek, TriggerOpen, TriggerChooseChat, TriggerChooseVoice,
	TriggerChooseGift, TriggerInput, TriggerToggle, TriggerClose,
}

// next is the mode transition table. resume selects chat over initial when a
// conversation already exists. ok is false for transitions that do not exist.
func next(from Mode, t Trigger, resume bool) (to Mode, ok bool) {
	switch t {
	case TriggerPeekTimer:
		if from == ModeClosed {
			return ModePeekVisible, true
		}
	case TriggerDismissPeek:
		if from == ModePeekVisible {
			return ModePeekDismissed, true
		}
	case TriggerOpen:
		if !from.Open() {
			if resume {
				return ModeChat, true
			}
			return ModeInitial, true
		}
	case TriggerChooseChat, TriggerChooseGift:
		if from == ModeInitial {
			return ModeChat, true
		}
	case TriggerChooseVoice:
		if from != ModeChat && from != ModeVoice {
			return ModeVoice, true
		}
	case TriggerInput:
		switch from {
		case ModeInitial, ModeChat:
			return ModeChat, true
		case ModeVoice:
			return ModeVoice, true
		}
	case TriggerToggle:
		switch from {
		case ModeChat:
			return ModeVoice, true
		case ModeVoice:
			return ModeChat, true
		}
	case TriggerClose:
		if from.Open() {
			return ModeClosed, true
		}
	}
	return from, false
}
