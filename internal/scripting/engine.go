package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/tickpoll/internal/behaviour"
	"github.com/l1jgo/tickpoll/internal/core/routine"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/l1jgo/tickpoll/internal/data"
	"github.com/l1jgo/tickpoll/internal/poll"
	"github.com/l1jgo/tickpoll/internal/singleton"
	"github.com/l1jgo/tickpoll/internal/wait"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ScriptOwner is the behaviour hosting poll routines started by scripts that
// do not name an owner.
const ScriptOwner = "Script"

// Engine wraps a single gopher-lua VM exposing the pollers to scripts.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm         *lua.LState
	log        *zap.Logger
	behaviours *behaviour.Host
	waiter     *wait.Waiter
	owners     map[string]*singleton.Slot[*behaviour.Behaviour]
}

// NewEngine creates a Lua engine, installs the poll/wait/owner/log modules
// and loads every script in dir. An empty or missing dir loads nothing.
func NewEngine(dir string, behaviours *behaviour.Host, waiter *wait.Waiter, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log,
		behaviours: behaviours,
		waiter:     waiter,
		owners:     make(map[string]*singleton.Slot[*behaviour.Behaviour]),
	}
	e.openModules()

	if err := e.loadDir(dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Owner returns the live behaviour with the given name, spawning it on first
// use or after it was destroyed.
func (e *Engine) Owner(name string) (*behaviour.Behaviour, error) {
	slot, ok := e.owners[name]
	if !ok {
		slot = singleton.New(func() (*behaviour.Behaviour, error) {
			return e.behaviours.Spawn(name)
		}, (*behaviour.Behaviour).Alive)
		e.owners[name] = slot
	}
	return slot.Instance()
}

// Bind starts the routine described by a trigger. Predicate and action must
// name global Lua functions.
func (e *Engine) Bind(tr data.Trigger) (*routine.Handle, error) {
	pred, err := e.globalFunc(tr.Predicate)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", tr.Name, err)
	}
	action, err := e.globalFunc(tr.Action)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", tr.Name, err)
	}
	owner, err := e.Owner(tr.Owner)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", tr.Name, err)
	}
	h, err := e.start(owner, tr.Kind, pred, action, tr.Stage)
	if err != nil {
		return nil, fmt.Errorf("trigger %s: %w", tr.Name, err)
	}
	e.log.Info("trigger bound",
		zap.String("name", tr.Name),
		zap.String("kind", string(tr.Kind)),
		zap.Stringer("stage", tr.Stage),
		zap.String("owner", owner.Name),
	)
	return h, nil
}

func (e *Engine) globalFunc(name string) (*lua.LFunction, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("lua function %s not found", name)
	}
	return fn, nil
}

func (e *Engine) start(owner *behaviour.Behaviour, kind data.TriggerKind, pred, action *lua.LFunction, stage coresys.Stage) (*routine.Handle, error) {
	switch kind {
	case data.KindWhile:
		return poll.While(owner, e.predicate(pred), e.action(action), stage)
	case data.KindWhen:
		return poll.When(owner, e.predicate(pred), e.action(action), stage)
	case data.KindWhenever:
		return poll.Whenever(owner, e.predicate(pred), e.action(action), stage)
	case data.KindWatch:
		return poll.Watch(owner, e.expression(pred), e.valueAction(action), stage)
	default:
		return nil, fmt.Errorf("%w %q", data.ErrUnknownKind, kind)
	}
}

// call runs fn inside the VM. A Lua error is raised as a Go panic so that it
// terminates only the routine currently being stepped.
func (e *Engine) call(fn *lua.LFunction, nret int, args ...lua.LValue) lua.LValue {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...); err != nil {
		panic(fmt.Errorf("lua: %w", err))
	}
	if nret == 0 {
		return lua.LNil
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result
}

func (e *Engine) predicate(fn *lua.LFunction) func() bool {
	return func() bool { return lua.LVAsBool(e.call(fn, 1)) }
}

func (e *Engine) expression(fn *lua.LFunction) func() lua.LValue {
	return func() lua.LValue { return e.call(fn, 1) }
}

func (e *Engine) action(fn *lua.LFunction) func() {
	return func() { e.call(fn, 0) }
}

func (e *Engine) valueAction(fn *lua.LFunction) func(lua.LValue) {
	return func(v lua.LValue) { e.call(fn, 0, v) }
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
