package domain

import "time"

// Patch is the sparse update a node returns from one tick. Nil pointer
// fields are untouched on merge; set fields win over the previous state.
// Messages are append-only: AppendMessages never replaces history.
//
// Error uses pointer semantics so a node can distinguish "leave the error
// alone" (nil) from "clear it" (pointer to empty string).
type Patch struct {
	AppendMessages     []Message
	Stage              *Stage
	LastUserAction     *UserAction
	Title              *string
	IsProcessing       *bool
	Error              *string
	VoiceAudio         *VoiceAudio
	VoiceTranscription *string
	UserPrompts        map[Stage]string
	SelectedModels     map[Stage]string
}

// IsZero reports whether the patch carries no changes at all.
func (p Patch) IsZero() bool {
	return len(p.AppendMessages) == 0 &&
		p.Stage == nil &&
		p.LastUserAction == nil &&
		p.Title == nil &&
		p.IsProcessing == nil &&
		p.Error == nil &&
		p.VoiceAudio == nil &&
		p.VoiceTranscription == nil &&
		len(p.UserPrompts) == 0 &&
		len(p.SelectedModels) == 0
}

// Fields lists the names of the state fields this patch touches, for
// state-update telemetry.
func (p Patch) Fields() []string {
	var fields []string
	if len(p.AppendMessages) > 0 {
		fields = append(fields, "messages")
	}
	if p.Stage != nil {
		fields = append(fields, "stage")
	}
	if p.LastUserAction != nil {
		fields = append(fields, "last_user_action")
	}
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.IsProcessing != nil {
		fields = append(fields, "is_processing")
	}
	if p.Error != nil {
		fields = append(fields, "error")
	}
	if p.VoiceAudio != nil {
		fields = append(fields, "voice_audio_data")
	}
	if p.VoiceTranscription != nil {
		fields = append(fields, "voice_transcription")
	}
	if len(p.UserPrompts) > 0 {
		fields = append(fields, "user_prompts")
	}
	if len(p.SelectedModels) > 0 {
		fields = append(fields, "selected_models")
	}
	return fields
}

// Apply merges the patch into a clone of prev and refreshes UpdatedAt.
// prev is never mutated.
func (p Patch) Apply(prev *SessionState) *SessionState {
	next := prev.Clone()

	next.Messages = append(next.Messages, p.AppendMessages...)
	if p.Stage != nil {
		next.Stage = *p.Stage
	}
	if p.LastUserAction != nil {
		next.LastUserAction = *p.LastUserAction
	}
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.IsProcessing != nil {
		next.IsProcessing = *p.IsProcessing
	}
	if p.Error != nil {
		next.Error = *p.Error
	}
	if p.VoiceAudio != nil {
		audio := *p.VoiceAudio
		next.VoiceAudio = &audio
	}
	if p.VoiceTranscription != nil {
		next.VoiceTranscription = *p.VoiceTranscription
	}
	for stage, prompt := range p.UserPrompts {
		next.UserPrompts[stage] = prompt
	}
	for stage, model := range p.SelectedModels {
		next.SelectedModels[stage] = model
	}

	next.UpdatedAt = time.Now().UTC()
	return next
}
