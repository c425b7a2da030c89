package analysis

import (
	domain "github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
)

// Builder shapes raw user input into provider requests. It performs no I/O.
type Builder struct {
	Lang prompt.Lang
}

func NewBuilder(lang prompt.Lang) Builder {
	return Builder{Lang: lang}
}

// URLRequest embeds the literal url in the instruction.
func (b Builder) URLRequest(url string) domain.Request {
	return domain.Request{
		Modality: domain.ModalityURL,
		Prompt:   prompt.URL(b.Lang, url),
	}
}

// TextRequest caps text at MaxPromptTextRunes before embedding it.
func (b Builder) TextRequest(text string) domain.Request {
	return domain.Request{
		Modality: domain.ModalityText,
		Prompt:   prompt.Text(b.Lang, truncateRunes(text, domain.MaxPromptTextRunes)),
	}
}

// FileRequest attaches image payloads; any other content is treated as text.
// The media type is assumed to have been accepted at the boundary already.
func (b Builder) FileRequest(data []byte, mediaType string, isImage bool) domain.Request {
	if isImage {
		return domain.Request{
			Modality:   domain.ModalityFile,
			Prompt:     prompt.Image(b.Lang),
			Attachment: data,
			MediaType:  mediaType,
		}
	}
	req := b.TextRequest(string(data))
	req.Modality = domain.ModalityFile
	return req
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
