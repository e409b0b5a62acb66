package conversation

import (
	"testing"

	"github.com/hammamikhairi/recipebot/internal/logger"
)

func TestParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log)

	tests := []struct {
		input     string
		wantType  CommandType
		wantQuery string
	}{
		// Searches
		{"pasta", CommandSearch, "pasta"},
		{"  chicken   curry  ", CommandSearch, "chicken curry"},
		{"help me with soup", CommandSearch, "help me with soup"},
		{"//pasta", CommandSearch, "/pasta"},

		// Empty
		{"", CommandNone, ""},
		{"   \t ", CommandNone, ""},

		// Voice
		{"/voice", CommandVoiceToggle, ""},
		{"/V", CommandVoiceToggle, ""},
		{"/listen", CommandVoiceStart, ""},
		{"/stop", CommandVoiceStop, ""},

		// Saved
		{"/load", CommandLoadSaved, ""},
		{"/saved", CommandLoadSaved, ""},

		// Help / quit
		{"/help", CommandHelp, ""},
		{"/?", CommandHelp, ""},
		{"/quit", CommandQuit, ""},
		{" /Exit ", CommandQuit, ""},

		// Unknown
		{"/dance", CommandUnknown, "/dance"},
		{"/voice now", CommandUnknown, "/voice now"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := parser.Parse(tt.input)
			if cmd.Type != tt.wantType {
				t.Errorf("Parse(%q).Type = %s, want %s", tt.input, cmd.Type, tt.wantType)
			}
			if cmd.Query != tt.wantQuery {
				t.Errorf("Parse(%q).Query = %q, want %q", tt.input, cmd.Query, tt.wantQuery)
			}
		})
	}
}

func TestHelpCoversCommands(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log)

	for _, line := range Help() {
		word := line
		for i, r := range line {
			if r == ' ' {
				word = line[:i]
				break
			}
		}
		if word == "//text" {
			continue
		}
		if got := parser.Parse(word).Type; got == CommandUnknown || got == CommandSearch {
			t.Errorf("help entry %q parses as %s", word, got)
		}
	}
}
