// Package config persists user defaults and the cycle position.
package config

type Driver[T any] interface {
	Exists() (bool, error)
	Write(value T) error
	Read() (T, error)
}

// NewStore writes defaults when the driver has nothing stored yet.
func NewStore[T any](driver Driver[T], defaults T) (Store[T], error) {
	exists, err := driver.Exists()
	if err != nil {
		return Store[T]{}, err
	}
	if !exists {
		if err := driver.Write(defaults); err != nil {
			return Store[T]{}, err
		}
	}

	return Store[T]{
		driver: driver,
	}, nil
}

type Store[T any] struct {
	driver Driver[T]
}

func (p *Store[T]) Get() (T, error) {
	return p.driver.Read()
}

func (p *Store[T]) Update(fn func(value T) (T, error)) error {
	value, err := p.driver.Read()
	if err != nil {
		return err
	}

	value, err = fn(value)
	if err != nil {
		return err
	}

	return p.driver.Write(value)
}
