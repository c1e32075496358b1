package game

import "testing"

func TestDefaultWordsNonEmpty(t *testing.T) {
	if len(DefaultWords) == 0 {
		t.Fatal("expected built-in word list to be populated")
	}
	for _, word := range DefaultWords {
		if word == "" {
			t.Fatal("built-in word list contains an empty word")
		}
	}
}

func TestPickWordFromList(t *testing.T) {
	words := []string{"사과", "바나나"}
	for i := 0; i < 20; i++ {
		picked := PickWord(words)
		if picked != "사과" && picked != "바나나" {
			t.Fatalf("picked word %q not in candidate list", picked)
		}
	}
}

func TestPickWordFallsBackToDefaults(t *testing.T) {
	picked := PickWord(nil)
	if picked == "" {
		t.Fatal("expected a non-empty word from the built-in list")
	}
}
