package experiment

import (
	"testing"

	"github.com/rijpm101/nocr/internal/providers"
)

func TestBuildZeroShot(t *testing.T) {
	target := &providers.FileRef{URI: "files/target", MimeType: "image/jpeg"}
	turns := BuildZeroShot(target, "extract the records")

	if len(turns) != 1 {
		t.Fatalf("zero-shot has %d turns, want 1", len(turns))
	}
	if turns[0].Role != providers.RoleUser {
		t.Errorf("role = %q, want %q", turns[0].Role, providers.RoleUser)
	}
	if len(turns[0].Parts) != 2 {
		t.Fatalf("turn has %d parts, want 2", len(turns[0].Parts))
	}
	if turns[0].Parts[0].File != target {
		t.Error("first part is not the target image reference")
	}
	if turns[0].Parts[1].Text != "extract the records" {
		t.Errorf("second part = %q, want prompt text", turns[0].Parts[1].Text)
	}
}

func TestBuildFewShot(t *testing.T) {
	prompt := "extract the records"
	target := &providers.FileRef{URI: "files/target", MimeType: "image/jpeg"}
	examples := []Example{
		{File: &providers.FileRef{URI: "files/a"}, Answer: `{"page": 1}`},
		{File: &providers.FileRef{URI: "files/b"}, Answer: `{"page": 2}`},
		{File: &providers.FileRef{URI: "files/c"}, Answer: `{"page": 3}`},
	}

	turns := BuildFewShot(target, prompt, examples)

	if len(turns) != 7 {
		t.Fatalf("few-shot with 3 examples has %d turns, want 7", len(turns))
	}

	t.Run("alternating roles", func(t *testing.T) {
		for i, turn := range turns {
			wantRole := providers.RoleUser
			if i%2 == 1 {
				wantRole = providers.RoleModel
			}
			if turn.Role != wantRole {
				t.Errorf("turn %d role = %q, want %q", i, turn.Role, wantRole)
			}
		}
	})

	t.Run("example order preserved", func(t *testing.T) {
		for i, ex := range examples {
			userTurn := turns[2*i]
			if userTurn.Parts[0].File != ex.File {
				t.Errorf("example %d: user turn carries wrong image", i)
			}
			modelTurn := turns[2*i+1]
			if len(modelTurn.Parts) != 1 || modelTurn.Parts[0].Text != ex.Answer {
				t.Errorf("example %d: model turn = %v, want answer %q", i, modelTurn.Parts, ex.Answer)
			}
		}
	})

	t.Run("final turn targets held-out image", func(t *testing.T) {
		last := turns[len(turns)-1]
		if last.Parts[0].File != target {
			t.Error("final turn does not reference the target image")
		}
	})

	t.Run("prompt identical across user turns", func(t *testing.T) {
		for i, turn := range turns {
			if turn.Role != providers.RoleUser {
				continue
			}
			if turn.Parts[1].Text != prompt {
				t.Errorf("turn %d prompt = %q, want %q", i, turn.Parts[1].Text, prompt)
			}
		}
	})
}

func TestBuildFewShotNoExamples(t *testing.T) {
	target := &providers.FileRef{URI: "files/target"}
	turns := BuildFewShot(target, "p", nil)

	if len(turns) != 1 {
		t.Fatalf("few-shot with 0 examples has %d turns, want 1", len(turns))
	}
}
