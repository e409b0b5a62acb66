// Package conversation turns what the user types into the query field
// into commands for the recipe screen.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/recipebot/internal/logger"
)

// CommandType names what the user asked for.
type CommandType int

const (
	// CommandNone is empty input.
	CommandNone CommandType = iota
	// CommandSearch runs the pipeline with Command.Query.
	CommandSearch
	CommandVoiceToggle
	CommandVoiceStart
	CommandVoiceStop
	CommandLoadSaved
	CommandHelp
	CommandQuit
	// CommandUnknown is a slash word that matches no command.
	CommandUnknown
)

// String returns a short name for logs.
func (c CommandType) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandSearch:
		return "search"
	case CommandVoiceToggle:
		return "voice"
	case CommandVoiceStart:
		return "listen"
	case CommandVoiceStop:
		return "stop"
	case CommandLoadSaved:
		return "load"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is parsed input. Query is set for CommandSearch; for
// CommandUnknown it holds the raw input.
type Command struct {
	Type  CommandType
	Query string
}

// Parser recognises slash commands. Anything else is a search query.
type Parser struct {
	log   *logger.Logger
	rules []rule
}

type rule struct {
	regex *regexp.Regexp
	cmd   CommandType
}

// NewParser creates a command parser.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{
		log: log,
		rules: []rule{
			{regexp.MustCompile(`(?i)^/(voice|mic|v)$`), CommandVoiceToggle},
			{regexp.MustCompile(`(?i)^/(listen|start)$`), CommandVoiceStart},
			{regexp.MustCompile(`(?i)^/(stop|mute)$`), CommandVoiceStop},
			{regexp.MustCompile(`(?i)^/(load|saved|l)$`), CommandLoadSaved},
			{regexp.MustCompile(`(?i)^/(help|h|\?)$`), CommandHelp},
			{regexp.MustCompile(`(?i)^/(quit|exit|q)$`), CommandQuit},
		},
	}
}

// Parse classifies input. The query of a search keeps the user's text,
// trimmed, with inner whitespace collapsed.
func (p *Parser) Parse(input string) Command {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return Command{Type: CommandNone}
	}

	if !strings.HasPrefix(trimmed, "/") {
		return Command{Type: CommandSearch, Query: trimmed}
	}

	// "//pasta" searches for "/pasta".
	if strings.HasPrefix(trimmed, "//") {
		return Command{Type: CommandSearch, Query: trimmed[1:]}
	}

	for _, r := range p.rules {
		if r.regex.MatchString(trimmed) {
			p.log.Debug("command: %s", r.cmd)
			return Command{Type: r.cmd}
		}
	}

	p.log.Debug("unknown command %q", trimmed)
	return Command{Type: CommandUnknown, Query: trimmed}
}

// Help lists the commands Parse understands.
func Help() []string {
	return []string{
		"/voice   toggle voice input",
		"/listen  start listening",
		"/stop    stop listening",
		"/load    show saved recipes",
		"/help    this list",
		"/quit    exit",
		"//text   search for text starting with /",
	}
}
