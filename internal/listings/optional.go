package listings

import "encoding/json"

// Optional distingue un campo ausente (o null) de uno enviado con valor.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Set: true}
}

func (optional *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*optional = Optional[T]{}
		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*optional = Some(value)
	return nil
}
