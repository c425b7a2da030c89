package analysis

// MaxPromptTextRunes caps the amount of pasted or uploaded text sent to the provider.
const MaxPromptTextRunes = 3000

// Request is the outbound descriptor handed to an Analyzer: instruction
// text plus an optional single binary attachment.
type Request struct {
	Modality   Modality
	Prompt     string
	Attachment []byte
	MediaType  string
}

// HasAttachment reports whether the request carries binary content.
func (r Request) HasAttachment() bool {
	return len(r.Attachment) > 0
}
