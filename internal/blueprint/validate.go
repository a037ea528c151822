package blueprint

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
)

// Validate checks the whole tree before anything is persisted. Failures
// match domain.ErrValidation.
func Validate(t Tree) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (t Tree) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Sprints, validation.By(uniqueSprintNames)),
	)
}

// Validate implements validation.Validatable.
func (s SprintDef) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&s.Duration, validation.Length(0, 50)),
		validation.Field(&s.Epics, validation.By(uniqueEpicNames)),
	)
}

// Validate implements validation.Validatable.
func (e EpicDef) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Code, validation.Required, validation.Length(1, 10)),
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Stories),
	)
}

// Validate implements validation.Validatable.
func (s StoryDef) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&s.Points, validation.Min(0)),
		validation.Field(&s.Priority, validation.Required, validation.In(PriorityHigh, PriorityMedium, PriorityLow)),
	)
}

func uniqueSprintNames(value interface{}) error {
	sprints, _ := value.([]SprintDef)
	seen := make(map[string]bool, len(sprints))
	for _, s := range sprints {
		if seen[s.Name] {
			return fmt.Errorf("duplicate sprint name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func uniqueEpicNames(value interface{}) error {
	epics, _ := value.([]EpicDef)
	seen := make(map[string]bool, len(epics))
	for _, e := range epics {
		if seen[e.Name] {
			return fmt.Errorf("duplicate epic name %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}
