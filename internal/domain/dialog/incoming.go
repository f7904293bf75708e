package dialog

// Incoming is a transport-agnostic view of one inbound user message, reduced
// to what the funnel states can accept.
type Incoming struct {
	// Text is the trimmed message text, empty for pure media messages.
	Text string
	// VideoFileID is set when the message carries a video.
	VideoFileID string
	// HasOtherMedia is set for payloads no funnel state accepts
	// (voice, stickers, photos, documents).
	HasOtherMedia bool
}

// IsText reports whether the message is a plain non-empty text message.
func (in Incoming) IsText() bool {
	return in.Text != "" && in.VideoFileID == "" && !in.HasOtherMedia
}
