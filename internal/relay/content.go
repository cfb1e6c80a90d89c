package relay

// Kind classifies an inbound content item.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
	KindVoice Kind = "voice"
)

// Valid reports whether k is one of the accepted content kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindPhoto, KindVideo, KindVoice:
		return true
	}
	return false
}

// Media reports whether k carries a media payload rather than text.
func (k Kind) Media() bool {
	return k == KindPhoto || k == KindVideo || k == KindVoice
}

// ContentItem is one inbound submission. It lives only as long as the single
// publish-or-review decision; nothing persists it except the audit log.
type ContentItem struct {
	SenderID    string
	DisplayName string
	Handle      string
	Kind        Kind

	// Text is set for KindText only.
	Text string

	// MediaRef is the transport layer's opaque handle to the media payload,
	// set for the media kinds only.
	MediaRef string
}
