package commonModels

import (
	"strings"
)

const (
	maxProfileItems  = 12
	maxProfileItemLn = 200
)

// StyleProfile is the brand-voice configuration. Voice.Tone, Content.Themes and
// Content.BrandRules are always present; the remaining fields are optional and
// omitted when empty.
type StyleProfile struct {
	Voice    VoiceProfile   `json:"voice"`
	Content  ContentProfile `json:"content"`
	Audience string         `json:"audience,omitempty"`
}

type VoiceProfile struct {
	Tone        []string `json:"tone"`
	Personality []string `json:"personality,omitempty"`
}

type ContentProfile struct {
	Themes     []string   `json:"themes"`
	BrandRules BrandRules `json:"brandRules"`
}

type BrandRules struct {
	Do   []string `json:"do"`
	Dont []string `json:"dont"`
}

// NeutralProfile is used for brands without enough source material.
func NeutralProfile() StyleProfile {
	return StyleProfile{
		Voice: VoiceProfile{Tone: []string{"clear", "friendly", "professional"}},
		Content: ContentProfile{
			Themes: []string{},
			BrandRules: BrandRules{
				Do:   []string{"Be accurate and concise"},
				Dont: []string{"Invent facts about the brand"},
			},
		},
	}
}

// Normalize trims, drops blanks and duplicates (case-insensitive, first wins) and caps
// list sizes. Nil lists become empty so the JSON shape is stable.
func (p StyleProfile) Normalize() StyleProfile {
	return StyleProfile{
		Voice: VoiceProfile{
			Tone:        cleanList(p.Voice.Tone),
			Personality: cleanList(p.Voice.Personality),
		},
		Content: ContentProfile{
			Themes: cleanList(p.Content.Themes),
			BrandRules: BrandRules{
				Do:   cleanList(p.Content.BrandRules.Do),
				Dont: cleanList(p.Content.BrandRules.Dont),
			},
		},
		Audience: clip(strings.TrimSpace(p.Audience)),
	}
}

func (p StyleProfile) IsEmpty() bool {
	return len(p.Voice.Tone) == 0 && len(p.Content.Themes) == 0 &&
		len(p.Content.BrandRules.Do) == 0 && len(p.Content.BrandRules.Dont) == 0
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = clip(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == maxProfileItems {
			break
		}
	}
	return out
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxProfileItemLn {
		return s
	}
	return string(r[:maxProfileItemLn])
}
