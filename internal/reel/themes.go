package reel

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Branch identifies the randomly selected alternate ending of a reel.
type Branch string

const (
	BranchNegative Branch = "negative"
	BranchPositive Branch = "positive"
)

// Outcome pairs a generation prompt with the caption burned into the frame.
type Outcome struct {
	Prompt  string `yaml:"prompt"`
	Caption string `yaml:"caption"`
}

// Theme holds the static prompt set for one reel style.
type Theme struct {
	Name         string  `yaml:"name"`
	IntroPrompt  string  `yaml:"intro_prompt"`
	IntroCaption string  `yaml:"intro_caption"`
	Negative     Outcome `yaml:"negative"`
	Positive     Outcome `yaml:"positive"`
}

// Selection is the fully resolved prompt set for a single composition. The
// outcome branch is chosen exactly once so the outcome image and its caption
// always agree.
type Selection struct {
	Theme          string
	IntroPrompt    string
	IntroCaption   string
	OutcomePrompt  string
	OutcomeCaption string
	Branch         Branch
}

const classicTheme = "classic"

// The built-in "classic" prompt set: backrooms hallway intro, two doors, and
// a horror-or-dreamcore ending.
var builtinThemes = map[string]Theme{
	classicTheme: {
		Name: classicTheme,
		IntroPrompt: "Vertical 9:16. Liminal space, The Backrooms level 0. " +
			"Endless beige carpet, yellow wallpaper, buzzing fluorescent lights. " +
			"Two doors at the end of the hallway. Left door is RED, Right door is BLUE. " +
			"A tall, dark, skinny shadow entity is peeking from the far left corner. " +
			"POV shot, realistic, vhs camcorder style.",
		IntroCaption: "PICK A DOOR",
		Negative: Outcome{
			Prompt: "Vertical 9:16. POV horror. Inside a small dark room, a terrifying " +
				"pale face with wide eyes is screaming directly at the camera. " +
				"Glitch effect, distorted, analog horror style. 0% survival chance.",
			Caption: "SURVIVAL: 0%",
		},
		Positive: Outcome{
			Prompt: "Vertical 9:16. POV. A beautiful surreal meadow with giant floating " +
				"geometric shapes, clouds, soft pink and blue sky. Dreamcore aesthetic. " +
				"100% survival chance. Peaceful.",
			Caption: "YOU SURVIVED",
		},
	},
}

// Registry maps theme identifiers to prompt sets. Arbitrary identifiers are
// accepted; unknown ones resolve to the classic set so new front-end themes
// cannot break composition.
type Registry struct {
	themes map[string]Theme
	pick   func() Branch
}

// NewRegistry builds a registry with the built-in themes.
func NewRegistry() *Registry {
	themes := make(map[string]Theme, len(builtinThemes))
	for name, th := range builtinThemes {
		themes[name] = th
	}
	return &Registry{
		themes: themes,
		pick: func() Branch {
			if rand.Intn(2) == 0 {
				return BranchNegative
			}
			return BranchPositive
		},
	}
}

type themesFile struct {
	Themes []Theme `yaml:"themes"`
}

// LoadFile merges additional theme definitions from a YAML file into the
// registry. Built-in themes can be overridden by name.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("themes: read %s: %w", path, err)
	}
	var parsed themesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("themes: parse %s: %w", path, err)
	}
	for _, th := range parsed.Themes {
		name := strings.ToLower(strings.TrimSpace(th.Name))
		if name == "" {
			return fmt.Errorf("themes: entry without a name in %s", path)
		}
		if th.IntroPrompt == "" || th.Negative.Prompt == "" || th.Positive.Prompt == "" {
			return fmt.Errorf("themes: theme %q is missing prompts", name)
		}
		if th.IntroCaption == "" || th.Negative.Caption == "" || th.Positive.Caption == "" {
			return fmt.Errorf("themes: theme %q is missing captions", name)
		}
		th.Name = name
		r.themes[name] = th
	}
	return nil
}

// Select resolves a theme identifier into a concrete prompt set and chooses
// the outcome branch uniformly at random, exactly once per reel.
func (r *Registry) Select(theme string) Selection {
	name := strings.ToLower(strings.TrimSpace(theme))
	th, ok := r.themes[name]
	if !ok {
		th = r.themes[classicTheme]
	}

	branch := r.pick()
	outcome := th.Negative
	if branch == BranchPositive {
		outcome = th.Positive
	}
	return Selection{
		Theme:          th.Name,
		IntroPrompt:    th.IntroPrompt,
		IntroCaption:   th.IntroCaption,
		OutcomePrompt:  outcome.Prompt,
		OutcomeCaption: outcome.Caption,
		Branch:         branch,
	}
}
