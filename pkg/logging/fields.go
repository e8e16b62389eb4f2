package logging

import "time"

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain helpers.

// Keys lifted onto Entry.
const (
	keyComponent = "component"
	keyOperation = "operation"
	keyPhase     = "phase"
)

func Component(name string) Field {
	return String(keyComponent, name)
}

func Operation(op string) Field {
	return String(keyOperation, op)
}

// Phase names an auto-configure phase or any other step of a timed operation.
func Phase(name string) Field {
	return String(keyPhase, name)
}

func UnitID(id string) Field {
	return String("unit_id", id)
}

// Pin renders a unit/component pair as "unit:comp".
func Pin(token string) Field {
	return String("pin", token)
}

func NetworkID(id string) Field {
	return String("network_id", id)
}

func NetworkType(t string) Field {
	return String("network_type", t)
}

func Reason(r string) Field {
	return String("reason", r)
}

func Count(n int) Field {
	return Int("count", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
