package display

// TransformBinding is a transform value that may be updated after the display
// list has been submitted. If Key is zero, Value is used as is.
//
type TransformBinding struct {
	Key   PropertyKey
	Value Transform
}

// FloatBinding is the float counterpart of TransformBinding.
//
type FloatBinding struct {
	Key   PropertyKey
	Value float32
}

func StaticTransform(t Transform) TransformBinding { return TransformBinding{Value: t} }
func StaticFloat(v float32) FloatBinding           { return FloatBinding{Value: v} }

// Properties holds the current values of animated properties. Updating them
// lets a renderer produce a new frame without a new display list.
//
type Properties struct {
	Transforms map[PropertyKey]Transform
	Floats     map[PropertyKey]float32
}

// SetTransform sets the value of an animated transform.
//
func (p *Properties) SetTransform(k PropertyKey, t Transform) {
	if p.Transforms == nil {
		p.Transforms = make(map[PropertyKey]Transform)
	}
	p.Transforms[k] = t
}

// SetFloat sets the value of an animated float.
//
func (p *Properties) SetFloat(k PropertyKey, v float32) {
	if p.Floats == nil {
		p.Floats = make(map[PropertyKey]float32)
	}
	p.Floats[k] = v
}

// Len returns the number of property values in p.
//
func (p *Properties) Len() int {
	return len(p.Transforms) + len(p.Floats)
}

// Merge copies all values of q into p.
//
func (p *Properties) Merge(q Properties) {
	for k, v := range q.Transforms {
		p.SetTransform(k, v)
	}
	for k, v := range q.Floats {
		p.SetFloat(k, v)
	}
}

// Clone returns a deep copy of p.
//
func (p *Properties) Clone() Properties {
	var q Properties
	q.Merge(*p)
	return q
}

// Transform resolves a transform binding.
//
func (p *Properties) Transform(b TransformBinding) Transform {
	if b.Key != 0 {
		if v, ok := p.Transforms[b.Key]; ok {
			return v
		}
	}
	return b.Value
}

// Float resolves a float binding.
//
func (p *Properties) Float(b FloatBinding) float32 {
	if b.Key != 0 {
		if v, ok := p.Floats[b.Key]; ok {
			return v
		}
	}
	return b.Value
}
