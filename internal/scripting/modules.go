package scripting

import (
	"github.com/l1jgo/tickpoll/internal/core/routine"
	coresys "github.com/l1jgo/tickpoll/internal/core/system"
	"github.com/l1jgo/tickpoll/internal/data"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// openModules installs the script-facing globals:
//
//	poll.during(pred, action [, stage [, owner]]) -> stop()
//	poll.when / poll.whenever                     (same shape)
//	poll.watch(expr, action [, stage [, owner]])  -> stop()
//	wait.seconds(sec, fn)
//	wait.till(cond, fn)
//
// while and until are Lua keywords, so those spellings are only reachable
// by index: poll["while"], wait["until"].
//	owner.destroy(name)
//	log.info(msg) / log.warn(msg)
func (e *Engine) openModules() {
	L := e.vm
	L.SetGlobal("poll", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"during":   e.pollFunc(data.KindWhile),
		"while":    e.pollFunc(data.KindWhile),
		"when":     e.pollFunc(data.KindWhen),
		"whenever": e.pollFunc(data.KindWhenever),
		"watch":    e.pollFunc(data.KindWatch),
	}))
	L.SetGlobal("wait", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"seconds": e.luaWaitSeconds,
		"till":    e.luaWaitUntil,
		"until":   e.luaWaitUntil,
	}))
	L.SetGlobal("owner", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"destroy": e.luaDestroyOwner,
	}))
	L.SetGlobal("log", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"info": func(L *lua.LState) int {
			e.log.Info(L.CheckString(1), zap.String("source", "lua"))
			return 0
		},
		"warn": func(L *lua.LState) int {
			e.log.Warn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		},
	}))
}

func (e *Engine) pollFunc(kind data.TriggerKind) lua.LGFunction {
	return func(L *lua.LState) int {
		pred := L.CheckFunction(1)
		action := L.CheckFunction(2)
		stage, err := coresys.ParseStage(L.OptString(3, "update"))
		if err != nil {
			L.ArgError(3, err.Error())
			return 0
		}
		owner, err := e.Owner(L.OptString(4, ScriptOwner))
		if err != nil {
			L.RaiseError("poll.%s: %s", kind, err.Error())
			return 0
		}
		h, err := e.start(owner, kind, pred, action, stage)
		if err != nil {
			L.RaiseError("poll.%s: %s", kind, err.Error())
			return 0
		}
		L.Push(stopFunc(L, h))
		return 1
	}
}

func stopFunc(L *lua.LState, h *routine.Handle) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		h.Cancel()
		return 0
	})
}

func (e *Engine) luaWaitSeconds(L *lua.LState) int {
	sec := float64(L.CheckNumber(1))
	fn := L.CheckFunction(2)
	if err := e.waiter.Seconds(sec, e.action(fn)); err != nil {
		L.RaiseError("wait.seconds: %s", err.Error())
	}
	return 0
}

func (e *Engine) luaWaitUntil(L *lua.LState) int {
	cond := L.CheckFunction(1)
	fn := L.CheckFunction(2)
	if err := e.waiter.Until(e.predicate(cond), e.action(fn)); err != nil {
		L.RaiseError("wait.till: %s", err.Error())
	}
	return 0
}

func (e *Engine) luaDestroyOwner(L *lua.LState) int {
	name := L.CheckString(1)
	if slot, ok := e.owners[name]; ok {
		if b, set := slot.Peek(); set && b.Alive() {
			b.Destroy()
		}
	}
	return 0
}
