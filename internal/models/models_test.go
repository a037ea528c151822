package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestProject_Fields(t *testing.T) {
	typ := reflect.TypeOf(Project{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "Name", "size:200")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Name", "uniqueIndex")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "ProjectType", "default:general")
	assertGormTag(t, typ, "Status", "default:active")
	assertGormTag(t, typ, "Status", "index")

	assertFieldType(t, typ, "ID", "uint")
	assertFieldType(t, typ, "CreatedFromTemplate", "*uint")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestProject_Relations(t *testing.T) {
	typ := reflect.TypeOf(Project{})

	assertGormTag(t, typ, "Sprints", "foreignKey:ProjectID")
	assertGormTag(t, typ, "Sprints", "constraint:OnDelete:CASCADE")
	assertGormTag(t, typ, "Risks", "foreignKey:ProjectID")

	assertFieldType(t, typ, "Sprints", "[]models.Sprint")
	assertFieldType(t, typ, "Risks", "[]models.Risk")
}

func TestSprint_Fields(t *testing.T) {
	typ := reflect.TypeOf(Sprint{})

	// Composite natural key (project_id, name)
	assertGormTag(t, typ, "ProjectID", "uniqueIndex:idx_sprint_project_name")
	assertGormTag(t, typ, "Name", "uniqueIndex:idx_sprint_project_name")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Goal", "type:text")
	assertGormTag(t, typ, "Status", "default:planned")
	assertGormTag(t, typ, "SprintOrder", "index")

	assertFieldType(t, typ, "StoryPoints", "int")
	assertFieldType(t, typ, "SprintOrder", "int")
	assertFieldType(t, typ, "Epics", "[]models.Epic")
}

func TestEpic_Fields(t *testing.T) {
	typ := reflect.TypeOf(Epic{})

	assertGormTag(t, typ, "SprintID", "uniqueIndex:idx_epic_sprint_name")
	assertGormTag(t, typ, "Name", "uniqueIndex:idx_epic_sprint_name")
	assertGormTag(t, typ, "Code", "column:epic_code")
	assertGormTag(t, typ, "Code", "size:10")
	assertGormTag(t, typ, "Stories", "foreignKey:EpicID")

	assertFieldType(t, typ, "StorySeq", "int")
	assertFieldType(t, typ, "Stories", "[]models.Story")
}

func TestStory_Fields(t *testing.T) {
	typ := reflect.TypeOf(Story{})

	assertGormTag(t, typ, "EpicID", "uniqueIndex:idx_story_epic_code")
	assertGormTag(t, typ, "Code", "uniqueIndex:idx_story_epic_code")
	assertGormTag(t, typ, "Code", "size:20")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Prompt", "type:text")
	assertGormTag(t, typ, "Status", "default:todo")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Priority", "default:medium")

	// Points carry no column default: zero is a legal stored value.
	if tag := gormTag(t, typ, "StoryPoints"); strings.Contains(tag, "default") {
		t.Errorf("Story.StoryPoints gorm tag = %q, want no default", tag)
	}

	assertFieldType(t, typ, "StoryPoints", "int")
	assertFieldType(t, typ, "IssueNumber", "int")
	assertFieldType(t, typ, "Epic", "*models.Epic")
}

func TestTemplate_Fields(t *testing.T) {
	typ := reflect.TypeOf(Template{})

	assertGormTag(t, typ, "Name", "uniqueIndex")
	assertGormTag(t, typ, "TreeJSON", "column:template_data")
	assertGormTag(t, typ, "TreeJSON", "not null")
	assertGormTag(t, typ, "CreatedBy", "default:system")
	assertGormTag(t, typ, "UsageCount", "default:0")

	// A default on IsPublic would override an explicit false on insert.
	if tag := gormTag(t, typ, "IsPublic"); strings.Contains(tag, "default") {
		t.Errorf("Template.IsPublic gorm tag = %q, want no default", tag)
	}

	assertFieldType(t, typ, "IsPublic", "bool")
	assertFieldType(t, typ, "UsageCount", "int")
}

func TestRisk_Fields(t *testing.T) {
	typ := reflect.TypeOf(Risk{})

	assertGormTag(t, typ, "ProjectID", "index")
	assertGormTag(t, typ, "ProjectID", "not null")
	assertGormTag(t, typ, "Severity", "default:medium")
	assertGormTag(t, typ, "Status", "default:open")
	assertGormTag(t, typ, "Mitigation", "type:text")

	assertFieldType(t, typ, "ProjectID", "uint")
}
