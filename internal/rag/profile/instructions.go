package profile

const profileInstruction = `You analyse a brand's own writing and describe its voice.
Reply with one JSON object and nothing else, using exactly this shape:
{
  "voice": {"tone": ["..."], "personality": ["..."]},
  "content": {
    "themes": ["..."],
    "brandRules": {"do": ["..."], "dont": ["..."]}
  },
  "audience": "..."
}
tone: 3 to 6 adjectives, most characteristic first.
themes: the recurring topics across all sources.
brandRules: concrete writing directives a copywriter could follow.
Base every item on the sources; do not invent facts.`

const factsInstruction = `You extract brand memory facts.
A fact is one short, standalone statement of brand-specific knowledge found in the sources,
for example "Founded in 2019" or "Serves small businesses in the EU".
Reply with one JSON object: {"facts": ["..."]}. At most 25 facts. No opinions, no style advice.`
