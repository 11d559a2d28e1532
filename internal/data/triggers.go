package data

import (
	"errors"
	"fmt"
	"os"

	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind  = errors.New("unknown trigger kind")
	ErrUnknownStage = errors.New("unknown trigger stage")
)

// TriggerKind selects the polling strategy of a trigger.
type TriggerKind string

const (
	KindWhile    TriggerKind = "while"
	KindWhen     TriggerKind = "when"
	KindWhenever TriggerKind = "whenever"
	KindWatch    TriggerKind = "watch"
)

// Trigger binds a Lua predicate to a Lua action under one polling strategy.
// For watch triggers Predicate names the expression whose value is watched.
type Trigger struct {
	Name      string        `yaml:"name"`
	Kind      TriggerKind   `yaml:"kind"`
	StageName string        `yaml:"stage"` // update (default), late_update, fixed_update
	Predicate string        `yaml:"predicate"`
	Action    string        `yaml:"action"`
	Owner     string        `yaml:"owner"` // behaviour name; defaults to the trigger name
	Stage     coresys.Stage `yaml:"-"`
}

type triggerListFile struct {
	Triggers []Trigger `yaml:"triggers"`
}

// TriggerTable holds the triggers in file order.
type TriggerTable struct {
	triggers []Trigger
	byName   map[string]int
}

func (t *TriggerTable) All() []Trigger { return t.triggers }

// Get returns the trigger with the given name, or nil.
func (t *TriggerTable) Get(name string) *Trigger {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.triggers[i]
}

func (t *TriggerTable) Count() int {
	return len(t.triggers)
}

// LoadTriggerTable loads trigger definitions from a YAML file.
func LoadTriggerTable(path string) (*TriggerTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trigger list: %w", err)
	}
	t, err := ParseTriggerTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse trigger list %s: %w", path, err)
	}
	return t, nil
}

// ParseTriggerTable decodes and validates a trigger list.
func ParseTriggerTable(raw []byte) (*TriggerTable, error) {
	var f triggerListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	t := &TriggerTable{
		triggers: make([]Trigger, 0, len(f.Triggers)),
		byName:   make(map[string]int, len(f.Triggers)),
	}
	for i, tr := range f.Triggers {
		if tr.Name == "" {
			return nil, fmt.Errorf("trigger #%d: missing name", i+1)
		}
		if _, dup := t.byName[tr.Name]; dup {
			return nil, fmt.Errorf("trigger %s: duplicate name", tr.Name)
		}
		switch tr.Kind {
		case KindWhile, KindWhen, KindWhenever, KindWatch:
		default:
			return nil, fmt.Errorf("trigger %s: %w %q", tr.Name, ErrUnknownKind, tr.Kind)
		}
		stage, err := coresys.ParseStage(tr.StageName)
		if err != nil {
			return nil, fmt.Errorf("trigger %s: %w %q", tr.Name, ErrUnknownStage, tr.StageName)
		}
		tr.Stage = stage
		if tr.Predicate == "" || tr.Action == "" {
			return nil, fmt.Errorf("trigger %s: predicate and action are required", tr.Name)
		}
		if tr.Owner == "" {
			tr.Owner = tr.Name
		}
		t.byName[tr.Name] = len(t.triggers)
		t.triggers = append(t.triggers, tr)
	}
	return t, nil
}
