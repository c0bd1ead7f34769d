package quest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lox/rhythmbet/internal/game"
)

// ErrInvalidJSON is returned for quest files that are not valid JSON.
var ErrInvalidJSON = errors.New("invalid quest JSON")

// LoadJSON reads quests from a chart export. Two shapes are accepted, either
// at the top level or under a "quests" key:
//
//	[{"id": "q1", "description": "Play any chart rated 10 or above"}]
//	[{"id": "grievous-lady", "title": "Grievous Lady", "charts": [{"difficulty": "FTR", "level": "11"}]}]
//
// Songs with a charts array become one quest per chart. Entries without an id
// are numbered in file order.
func LoadJSON(data []byte) ([]game.Quest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if list := root.Get("quests"); list.Exists() {
		root = list
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of quests", ErrInvalidJSON)
	}

	var quests []game.Quest
	var err error
	root.ForEach(func(_, item gjson.Result) bool {
		n := len(quests) + 1
		charts := item.Get("charts")
		if !charts.IsArray() {
			var q game.Quest
			q, err = questFromItem(item, n)
			if err != nil {
				return false
			}
			quests = append(quests, q)
			return true
		}

		song := item.Get("id").String()
		title := item.Get("title").String()
		if title == "" {
			err = fmt.Errorf("%w: song %d has charts but no title", ErrInvalidJSON, n)
			return false
		}
		if song == "" {
			song = slug(title)
		}
		charts.ForEach(func(_, chart gjson.Result) bool {
			diff := chart.Get("difficulty").String()
			quests = append(quests, game.Quest{
				ID:          song + "/" + strings.ToLower(diff),
				Description: chartDescription(title, diff, chart.Get("level").String()),
			})
			return true
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return quests, nil
}

// LoadJSONFile reads quests from the JSON file at path.
func LoadJSONFile(path string) ([]game.Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quests: %w", err)
	}
	quests, err := LoadJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return quests, nil
}

func questFromItem(item gjson.Result, n int) (game.Quest, error) {
	if item.Type == gjson.String {
		return game.Quest{ID: fmt.Sprintf("quest-%d", n), Description: item.String()}, nil
	}
	desc := item.Get("description").String()
	if desc == "" {
		title := item.Get("title").String()
		if title == "" {
			return game.Quest{}, fmt.Errorf("%w: quest %d has no description or title", ErrInvalidJSON, n)
		}
		desc = chartDescription(title, item.Get("difficulty").String(), item.Get("level").String())
	}
	id := item.Get("id").String()
	if id == "" {
		id = fmt.Sprintf("quest-%d", n)
	}
	return game.Quest{ID: id, Description: desc}, nil
}

func chartDescription(title, difficulty, level string) string {
	var b strings.Builder
	b.WriteString(title)
	if difficulty != "" {
		b.WriteString(" [" + strings.ToUpper(difficulty))
		if level != "" {
			b.WriteString(" " + level)
		}
		b.WriteString("]")
	}
	return b.String()
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
