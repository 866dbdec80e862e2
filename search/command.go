// Package search parses the textual search language and compiles it into a
// relational statement.
//
// A search is a list of whitespace-separated tokens. Each token is either a
// command of the form name:arg1,arg2,... (or a bare name) drawn from a fixed
// vocabulary, or a free word handed to a pluggable recognizer. Parsing is
// all-or-nothing: one unrecognized token rejects the whole search.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Command is one parsed search token: a command name and its arguments.
type Command struct {
	Name string
	Args []string
}

// WordFunc recognizes tokens that do not match the command syntax and turns
// them into commands. Returning ok=false rejects the word.
type WordFunc func(word string) (Command, bool)

// RejectWords is the default WordFunc; it accepts nothing.
func RejectWords(string) (Command, bool) {
	return Command{}, false
}

// InvalidError reports a token that matched neither the command vocabulary
// nor the bare-word recognizer. The whole search is rejected.
type InvalidError struct {
	Token string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid search token %q", e.Token)
}

// DefaultVocabulary is the command vocabulary recognized by the compiler.
var DefaultVocabulary = []string{
	"study", "nostudy", "note", "lasttrained", "mistaken", "tag", "untagged", "score",
}

var commandNameRe = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// ParserOptions configures a Parser.
type ParserOptions struct {
	// Vocabulary is the set of accepted command names.
	// Defaults to DefaultVocabulary.
	Vocabulary []string

	// Word recognizes non-command tokens. Defaults to RejectWords.
	Word WordFunc
}

// Parser tokenizes search strings into commands.
type Parser struct {
	vocabulary map[string]struct{}
	word       WordFunc
}

// NewParser creates a Parser.
func NewParser(optFns ...func(o *ParserOptions)) *Parser {
	opts := ParserOptions{
		Vocabulary: DefaultVocabulary,
		Word:       RejectWords,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	vocab := make(map[string]struct{}, len(opts.Vocabulary))
	for _, name := range opts.Vocabulary {
		vocab[name] = struct{}{}
	}

	return &Parser{vocabulary: vocab, word: opts.Word}
}

// Parse converts search tokens into commands. The outcome covers the whole
// token list: a token whose command name is outside the vocabulary, or a
// word the recognizer rejects, fails the entire parse.
func (p *Parser) Parse(tokens []string) ([]Command, error) {
	commands := make([]Command, 0, len(tokens))
	for _, token := range tokens {
		name, rest, hasArgs := strings.Cut(token, ":")
		if commandNameRe.MatchString(name) {
			if _, ok := p.vocabulary[name]; !ok {
				return nil, &InvalidError{Token: token}
			}
			cmd := Command{Name: name}
			if hasArgs {
				cmd.Args = strings.Split(rest, ",")
			}
			commands = append(commands, cmd)
			continue
		}

		cmd, ok := p.word(token)
		if !ok {
			return nil, &InvalidError{Token: token}
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}
