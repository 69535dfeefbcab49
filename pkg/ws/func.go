package ws

// FactoryFunc adapts a plain function to the Factory interface. Only
// ConnectionMade is defined, so every other hook falls back to its default.
type FactoryFunc[H any] func(out Sender) H

// ConnectionMade calls fn(out).
func (fn FactoryFunc[H]) ConnectionMade(out Sender) H {
	return fn(out)
}

// FromFn turns fn into a Factory, inferring the handler type:
//
//	f := ws.FromFn(func(out ws.Sender) *echo { return &echo{out: out} })
func FromFn[H any](fn func(out Sender) H) FactoryFunc[H] {
	return FactoryFunc[H](fn)
}
