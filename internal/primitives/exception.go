package primitives

// Exception is a raised exception value: a kind tag plus a payload whose dynamic
// type is selected by the kind.
type Exception struct {
	Kind    Kind `json:"kind" yaml:"kind"`
	Payload any  `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Pending reports whether e carries an exception.
func (e Exception) Pending() bool {
	return e.Kind != None
}

// PayloadAs returns the payload of e as T.
func PayloadAs[T any](e Exception) (T, bool) {
	v, ok := e.Payload.(T)
	return v, ok
}
