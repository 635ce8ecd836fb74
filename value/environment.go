package value

// Environment is a stack of variable frames: one global frame plus one
// frame per active function call. Unlike a simple enclosed-scope chain,
// if/while/for bodies never push a frame of their own — only a function
// call does.
//
// Assign walks outward through every active frame looking for an
// existing binding to update, and only falls back to creating the name
// in the global frame if no frame already holds it — distinct from
// Define, which always writes into the current frame.
type Environment struct {
	frames []map[string]Value
}

// NewEnvironment creates an Environment with just the global frame.
func NewEnvironment() *Environment {
	return &Environment{frames: []map[string]Value{{}}}
}

// Push adds a new local frame for a function call.
func (e *Environment) Push() {
	e.frames = append(e.frames, map[string]Value{})
}

// Pop discards the innermost frame, returning execution to its caller's
// frame. Never pops the global frame.
func (e *Environment) Pop() {
	if len(e.frames) <= 1 {
		return
	}
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Environment) current() map[string]Value {
	return e.frames[len(e.frames)-1]
}

func (e *Environment) global() map[string]Value {
	return e.frames[0]
}

// Lookup searches from the innermost frame outward and returns the value
// bound to name, or (nil, false) if it is not bound anywhere.
func (e *Environment) Lookup(name string) (Value, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define introduces or overwrites name in the current (innermost) frame,
// used for `var` declarations and function parameter binding.
func (e *Environment) Define(name string, v Value) {
	e.current()[name] = v
}

// Assign implements `set`: it walks frames from innermost to outermost
// looking for an existing binding to update. If no frame already binds
// name, it is created fresh in the global frame.
func (e *Environment) Assign(name string, v Value) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = v
			return
		}
	}
	e.global()[name] = v
}
