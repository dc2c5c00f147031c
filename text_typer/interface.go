package text_typer

// Interface delivers one transcript to whatever window holds OS input
// focus at call time. Focus is read at injection time, not capture time:
// if focus moved while transcription ran, the text lands in the new
// target. No retry on failure; the caller logs and drops the utterance.
type Interface interface {
	Type(text string) error
}
