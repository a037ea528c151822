package blueprint

import (
	"encoding/json"
	"fmt"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
)

// The decode-side mirror of the tree uses pointers so that an absent key
// can be told apart from a zero value.
type rawTree struct {
	Sprints *[]rawSprint `json:"sprints"`
}

type rawSprint struct {
	Name     *string    `json:"name"`
	Goal     *string    `json:"goal"`
	Duration *string    `json:"duration"`
	Epics    *[]rawEpic `json:"epics"`
}

type rawEpic struct {
	Code    *string     `json:"epic_id"`
	Name    *string     `json:"name"`
	Goal    *string     `json:"goal"`
	Stories *[]rawStory `json:"stories"`
}

type rawStory struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Points      *int    `json:"points"`
	Priority    *string `json:"priority"`
	Prompt      *string `json:"prompt"`
}

// Encode serializes the tree. Empty lists are written as [] so the output
// always decodes again.
func Encode(t Tree) ([]byte, error) {
	data, err := json.Marshal(t.Clone())
	if err != nil {
		return nil, fmt.Errorf("blueprint: encode: %w", err)
	}
	return data, nil
}

// Decode parses a serialized tree. Every key Encode writes must be present;
// an absent key is an error, never an empty default. Any failure matches
// domain.ErrMalformedTree.
func Decode(data []byte) (Tree, error) {
	var raw rawTree
	if err := json.Unmarshal(data, &raw); err != nil {
		return Tree{}, fmt.Errorf("blueprint: %w: %v", domain.ErrMalformedTree, err)
	}
	if raw.Sprints == nil {
		return Tree{}, missing("", "sprints")
	}

	tree := Tree{Sprints: make([]SprintDef, 0, len(*raw.Sprints))}
	for i, rs := range *raw.Sprints {
		path := fmt.Sprintf("sprints[%d]", i)
		if rs.Name == nil {
			return Tree{}, missing(path, "name")
		}
		if rs.Goal == nil {
			return Tree{}, missing(path, "goal")
		}
		if rs.Duration == nil {
			return Tree{}, missing(path, "duration")
		}
		if rs.Epics == nil {
			return Tree{}, missing(path, "epics")
		}
		sprint := SprintDef{
			Name:     *rs.Name,
			Goal:     *rs.Goal,
			Duration: *rs.Duration,
			Epics:    make([]EpicDef, 0, len(*rs.Epics)),
		}
		for j, re := range *rs.Epics {
			epicPath := fmt.Sprintf("%s.epics[%d]", path, j)
			epic, err := decodeEpic(epicPath, re)
			if err != nil {
				return Tree{}, err
			}
			sprint.Epics = append(sprint.Epics, epic)
		}
		tree.Sprints = append(tree.Sprints, sprint)
	}
	return tree, nil
}

func decodeEpic(path string, re rawEpic) (EpicDef, error) {
	if re.Code == nil {
		return EpicDef{}, missing(path, "epic_id")
	}
	if re.Name == nil {
		return EpicDef{}, missing(path, "name")
	}
	if re.Goal == nil {
		return EpicDef{}, missing(path, "goal")
	}
	if re.Stories == nil {
		return EpicDef{}, missing(path, "stories")
	}
	epic := EpicDef{
		Code:    *re.Code,
		Name:    *re.Name,
		Goal:    *re.Goal,
		Stories: make([]StoryDef, 0, len(*re.Stories)),
	}
	for k, rst := range *re.Stories {
		storyPath := fmt.Sprintf("%s.stories[%d]", path, k)
		switch {
		case rst.Title == nil:
			return EpicDef{}, missing(storyPath, "title")
		case rst.Description == nil:
			return EpicDef{}, missing(storyPath, "description")
		case rst.Points == nil:
			return EpicDef{}, missing(storyPath, "points")
		case rst.Priority == nil:
			return EpicDef{}, missing(storyPath, "priority")
		case rst.Prompt == nil:
			return EpicDef{}, missing(storyPath, "prompt")
		}
		epic.Stories = append(epic.Stories, StoryDef{
			Title:       *rst.Title,
			Description: *rst.Description,
			Points:      *rst.Points,
			Priority:    *rst.Priority,
			Prompt:      *rst.Prompt,
		})
	}
	return epic, nil
}

func missing(path, field string) error {
	if path == "" {
		return fmt.Errorf("blueprint: %w: missing %q", domain.ErrMalformedTree, field)
	}
	return fmt.Errorf("blueprint: %w: %s: missing %q", domain.ErrMalformedTree, path, field)
}
