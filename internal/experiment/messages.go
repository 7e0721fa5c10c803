package experiment

import (
	"github.com/rijpm101/nocr/internal/providers"
)

// Example pairs a few-shot image reference with its reference answer text.
type Example struct {
	File   *providers.FileRef
	Answer string // pretty-printed ground-truth JSON
}

// BuildZeroShot returns the single-turn conversation for a target image.
func BuildZeroShot(target *providers.FileRef, prompt string) []providers.Turn {
	return []providers.Turn{userTurn(target, prompt)}
}

// BuildFewShot emits a (user, model) turn pair per example in the given
// order, then the final user turn with the target image. For k examples the
// result has 2k+1 turns.
func BuildFewShot(target *providers.FileRef, prompt string, examples []Example) []providers.Turn {
	turns := make([]providers.Turn, 0, 2*len(examples)+1)
	for _, ex := range examples {
		turns = append(turns,
			userTurn(ex.File, prompt),
			providers.Turn{
				Role:  providers.RoleModel,
				Parts: []providers.Part{providers.TextPart(ex.Answer)},
			},
		)
	}
	return append(turns, userTurn(target, prompt))
}

func userTurn(ref *providers.FileRef, prompt string) providers.Turn {
	return providers.Turn{
		Role:  providers.RoleUser,
		Parts: []providers.Part{providers.FilePart(ref), providers.TextPart(prompt)},
	}
}
