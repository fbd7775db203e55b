package element

import (
	"maps"
	"math"
	"reflect"
)

// Props is a snapshot of an element's property values, keyed by name.
type Props map[string]any

// Changed maps the name of each property changed since the last update to
// its value prior to the first change.
type Changed map[string]any

// Has reports whether name changed.
func (c Changed) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// HasChangedFunc decides whether setting a property from old to value
// should request an update.
type HasChangedFunc func(old, value any) bool

// NotEqual is the default [HasChangedFunc]. Comparable values are compared
// with !=, treating NaN as equal to NaN, others with reflect.DeepEqual.
func NotEqual(old, value any) bool {
	if old == nil || value == nil {
		return old != value
	}
	ov, nv := reflect.ValueOf(old), reflect.ValueOf(value)
	if ov.Comparable() && nv.Comparable() {
		if old == value {
			return false
		}
		return !(isNaN(ov) && isNaN(nv))
	}
	return !reflect.DeepEqual(old, value)
}

func isNaN(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(v.Float())
	default:
		return false
	}
}

// Get returns the current value of the named property.
func (x *Element) Get(name string) (any, bool) {
	v, ok := x.props[name]
	return v, ok
}

// Set stores value as the named property, requesting an update if it
// changed, per the property's [HasChangedFunc].
func (x *Element) Set(name string, value any) {
	old, exists := x.props[name]
	x.props[name] = value

	hasChanged := x.hasChanged[name]
	if hasChanged == nil {
		hasChanged = NotEqual
	}
	if exists && !hasChanged(old, value) {
		return
	}
	if !exists && value == nil {
		return
	}

	// only the value prior to the first change is kept
	if _, ok := x.changed[name]; !ok {
		x.changed[name] = old
	}

	x.enqueue()
}

// Props returns a copy of all property values.
func (x *Element) Props() Props {
	return maps.Clone(x.props)
}

// Value returns the named property of x as a T, reporting false if it is
// unset or of another type.
func Value[T any](x *Element, name string) (T, bool) {
	v, ok := x.props[name].(T)
	return v, ok
}
