package collections

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"spellpaste/src/spell"
)

// index.json schema inside each collection directory.
type collectionIndex struct {
	Spells []spellDef `json:"spells"`
}

type spellDef struct {
	Trigger     string       `json:"trigger"`
	Description string       `json:"description"`
	Entry       entryDef     `json:"entry"`
	Settings    *settingsDef `json:"settings"`
}

type entryDef struct {
	Default string `json:"default"`
}

type settingsDef struct {
	OutputMode string `json:"outputMode"`
	StreamMode bool   `json:"streamMode"`
}

const seedIndex = `{
  "spells": [
    {
      "trigger": "hello",
      "description": "Generate \"Hello, World!\"",
      "entry": {
        "default": "echo Hello, World!"
      }
    }
  ]
}
`

// DefaultDir returns ~/.spellpaste/collections.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".spellpaste", "collections")
}

// Ensure creates the collections directory and seeds the hello collection
// on first run. Existing directories are left untouched.
func Ensure(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	helloDir := filepath.Join(dir, "hello")
	if err := os.Mkdir(helloDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(helloDir, "index.json"), []byte(seedIndex), 0o644)
}

// Load walks every collection directory under dir and parses its
// index.json. Unreadable or malformed collections are skipped, not fatal:
// one broken collection must not take down the rest.
func Load(dir string) []spell.Spell {
	var spells []spell.Spell

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("Collections: cannot read %s: %v", dir, err)
		return spells
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		collectionDir := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(collectionDir, "index.json"))
		if err != nil {
			continue
		}
		var index collectionIndex
		if err := json.Unmarshal(data, &index); err != nil {
			log.Printf("Collections: skipping %s: %v", entry.Name(), err)
			continue
		}
		for _, def := range index.Spells {
			s := spell.Spell{
				Trigger:     def.Trigger,
				Description: def.Description,
				Dir:         collectionDir,
				Entry:       def.Entry.Default,
				OutputMode:  spell.OutputPaste,
			}
			if def.Settings != nil {
				s.OutputMode = spell.ParseOutputMode(def.Settings.OutputMode)
				s.StreamMode = def.Settings.StreamMode
			}
			spells = append(spells, s)
		}
	}

	return spells
}
