package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/platformsim/server/internal/component"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding character tuning scripts.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// Tuning is the per-character physics tuning returned by character_tuning().
type Tuning struct {
	Radius       float64
	MoveDuration float64 // virtual time one move step takes
	FallDuration float64 // virtual time one fall step takes
}

// DefaultTuning is used when no script provides character_tuning().
var DefaultTuning = Tuning{Radius: 50, MoveDuration: 3, FallDuration: 3}

// DefaultBindings is used when no script provides character_bindings().
var DefaultBindings = []component.Binding{
	{Key: component.KeyLeft, DX: -1},
	{Key: component.KeyRight, DX: 1},
	{Key: component.KeyUp, DY: -100, Jump: true},
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/character.
// A missing directory is not an error; the defaults apply.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(scriptsDir, "character")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load character scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromString loads a single chunk. Used by tests and tools.
func NewEngineFromString(src string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &Engine{vm: vm, log: log}, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
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

// CharacterBindings calls character_bindings() and converts the returned
// list of {key, dx, dy, jump} tables. Entries with unknown keys are skipped.
func (e *Engine) CharacterBindings() []component.Binding {
	rt, ok := e.callTable("character_bindings")
	if !ok {
		return append([]component.Binding(nil), DefaultBindings...)
	}
	var out []component.Binding
	for i := 1; i <= rt.Len(); i++ {
		entry, ok := rt.RawGetInt(i).(*lua.LTable)
		if !ok {
			e.log.Warn("character_bindings entry is not a table", zap.Int("index", i))
			continue
		}
		name := lStr(entry, "key")
		key, ok := component.ParseKey(name)
		if !ok {
			e.log.Warn("character_bindings unknown key", zap.String("key", name))
			continue
		}
		out = append(out, component.Binding{
			Key:  key,
			DX:   lFloat(entry, "dx"),
			DY:   lFloat(entry, "dy"),
			Jump: lua.LVAsBool(entry.RawGetString("jump")),
		})
	}
	if len(out) == 0 {
		e.log.Warn("character_bindings returned nothing usable, using defaults")
		return append([]component.Binding(nil), DefaultBindings...)
	}
	return out
}

// CharacterTuning calls character_tuning(). Missing or non-positive fields
// keep their default.
func (e *Engine) CharacterTuning() Tuning {
	t := DefaultTuning
	rt, ok := e.callTable("character_tuning")
	if !ok {
		return t
	}
	if v := lFloat(rt, "radius"); v > 0 {
		t.Radius = v
	}
	if v := lFloat(rt, "move_duration"); v > 0 {
		t.MoveDuration = v
	}
	if v := lFloat(rt, "fall_duration"); v > 0 {
		t.FallDuration = v
	}
	return t
}

func (e *Engine) callTable(name string) (*lua.LTable, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("lua function not found, using defaults", zap.String("name", name))
		return nil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return nil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua function returned non-table", zap.String("func", name))
		return nil, false
	}
	return rt, true
}

// lFloat reads a number field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
